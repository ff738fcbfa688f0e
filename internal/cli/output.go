package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case TokenResult:
		o.printTokenResult(v)
	case UsersResult:
		o.printUsersResult(v)
	case CodeResult:
		o.printCodeResult(v)
	case AdminResult:
		o.printAdminResult(v)
	case DuelResult:
		o.printDuelResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// TokenResult response type (matches API)
type TokenResult struct {
	Token string `json:"token"`
}

// User response type
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// UsersResult response type
type UsersResult struct {
	Users []User `json:"users"`
}

// CodeResult response type
type CodeResult struct {
	Code string `json:"code"`
}

// AdminResult response type
type AdminResult struct {
	Admin bool `json:"admin"`
}

// Card response type
type Card struct {
	URL           string `json:"url"`
	Owner         User   `json:"owner"`
	Votes         int    `json:"votes"`
	AudienceVotes int    `json:"audience_votes"`
}

// DuelResult response type
type DuelResult struct {
	Card1 Card `json:"card1"`
	Card2 Card `json:"card2"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printTokenResult(t TokenResult) {
	fmt.Printf("Token: %s\n", t.Token)
}

func (o *Output) printUsersResult(u UsersResult) {
	fmt.Printf("Players (%d):\n", len(u.Users))
	for _, user := range u.Users {
		fmt.Printf("  - %s (%d points)\n", user.Name, user.Score)
	}
}

func (o *Output) printCodeResult(c CodeResult) {
	fmt.Printf("Join code: %s\n", c.Code)
}

func (o *Output) printAdminResult(a AdminResult) {
	adminStr := "no"
	if a.Admin {
		adminStr = "yes"
	}
	fmt.Printf("Admin: %s\n", adminStr)
}

func (o *Output) printDuelResult(d DuelResult) {
	fmt.Println("Current duel:")
	fmt.Printf("  [1] %s - %s (%d player / %d audience votes)\n",
		d.Card1.Owner.Name, d.Card1.URL, d.Card1.Votes, d.Card1.AudienceVotes)
	fmt.Printf("  [2] %s - %s (%d player / %d audience votes)\n",
		d.Card2.Owner.Name, d.Card2.URL, d.Card2.Votes, d.Card2.AudienceVotes)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
