// ABOUTME: Admin CLI for desk-gateway ticket inspection and settings
// ABOUTME: Uses the HTTP admin API with JWT authentication

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/2389/desk-gateway/internal/auth"
	"github.com/2389/desk-gateway/internal/config"
	"github.com/2389/desk-gateway/internal/gateway"
)

const banner = `
     _           _                    _           _
  __| | ___  ___| | __      __ _  __| |_ __ ___ (_)_ __
 / _' |/ _ \/ __| |/ /____ / _' |/ _' | '_ ' _ \| | '_ \
| (_| |  __/\__ \   <_____| (_| | (_| | | | | | | | | | |
 \__,_|\___||___/_|\_\     \__,_|\__,_|_| |_| |_|_|_| |_|
`

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	baseURL := os.Getenv("DESK_ADMIN_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "tickets":
		err = cmdTickets(baseURL, args)
	case "settings":
		err = cmdSettings(baseURL, args)
	case "token":
		err = cmdToken(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: desk-admin <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  tickets                  List tickets")
	fmt.Println("  tickets list [limit]     List tickets (default limit 50)")
	fmt.Println("  tickets show <id>        Show one ticket")
	fmt.Println("  settings set <key> <v>   Update a setting (welcome_text, team_id, knowledge_base_id)")
	fmt.Println("  token create [subject]   Generate a JWT from the local gateway config")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  DESK_ADMIN_URL           Gateway admin URL (default: http://localhost:8080)")
	fmt.Println("  DESK_TOKEN               JWT authentication token (required)")
	fmt.Println()
}

func getToken() (string, error) {
	token := os.Getenv("DESK_TOKEN")
	if token == "" {
		return "", fmt.Errorf("DESK_TOKEN is not set (try: desk-admin token create)")
	}
	return token, nil
}

func doRequest(method, url, body string) ([]byte, error) {
	token, err := getToken()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

func cmdTickets(baseURL string, args []string) error {
	if len(args) == 0 || args[0] == "list" {
		limit := "50"
		if len(args) > 1 {
			limit = args[1]
		}
		return ticketsList(baseURL, limit)
	}
	if args[0] == "show" {
		if len(args) < 2 {
			return fmt.Errorf("usage: desk-admin tickets show <id>")
		}
		return ticketsShow(baseURL, args[1])
	}
	return fmt.Errorf("unknown tickets subcommand: %s", args[0])
}

func ticketsList(baseURL, limit string) error {
	data, err := doRequest(http.MethodGet, baseURL+"/api/tickets?limit="+limit, "")
	if err != nil {
		return err
	}

	var resp gateway.ListTicketsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	if len(resp.Tickets) == 0 {
		fmt.Println("No tickets.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tREQUESTER\tASSIGNEE\tUPDATED\tTITLE")
	for _, t := range resp.Tickets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID,
			colorStatus(t.Status),
			t.RequesterName,
			t.AssigneeName,
			t.UpdatedAt.Local().Format("2006-01-02 15:04"),
			truncate(t.Title, 50),
		)
	}
	return w.Flush()
}

func ticketsShow(baseURL, id string) error {
	data, err := doRequest(http.MethodGet, baseURL+"/api/tickets/"+id, "")
	if err != nil {
		return err
	}

	var t gateway.TicketResponse
	if err := json.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	bold := color.New(color.Bold)
	bold.Println(t.Title)
	fmt.Printf("  id:         %s\n", t.ID)
	fmt.Printf("  status:     %s\n", colorStatus(t.Status))
	fmt.Printf("  requester:  %s", t.RequesterName)
	if t.RequesterUPN != "" {
		fmt.Printf(" <%s>", t.RequesterUPN)
	}
	fmt.Println()
	if t.AssigneeName != "" {
		fmt.Printf("  assignee:   %s\n", t.AssigneeName)
	}
	fmt.Printf("  created:    %s\n", t.CreatedAt.Local().Format(time.RFC1123))
	fmt.Printf("  updated:    %s\n", t.UpdatedAt.Local().Format(time.RFC1123))
	if t.LastModifiedBy != "" {
		fmt.Printf("  changed by: %s\n", t.LastModifiedBy)
	}
	return nil
}

func cmdSettings(baseURL string, args []string) error {
	if len(args) < 3 || args[0] != "set" {
		return fmt.Errorf("usage: desk-admin settings set <key> <value>")
	}

	body, err := json.Marshal(map[string]string{"value": args[2]})
	if err != nil {
		return err
	}

	if _, err := doRequest(http.MethodPut, baseURL+"/api/settings/"+args[1], string(body)); err != nil {
		return err
	}
	color.Green("✓ %s updated", args[1])
	fmt.Println()
	return nil
}

// cmdToken mints a JWT from the local gateway config's secret, for
// operators running the CLI on the gateway host.
func cmdToken(args []string) error {
	if len(args) == 0 || args[0] != "create" {
		return fmt.Errorf("usage: desk-admin token create [subject]")
	}

	subject := "admin"
	if len(args) > 1 {
		subject = args[1]
	}

	configPath := os.Getenv("DESK_CONFIG")
	if configPath == "" {
		return fmt.Errorf("DESK_CONFIG must point at the gateway config file")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is not set in %s", configPath)
	}

	token, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret)).Generate(subject, 30*24*time.Hour)
	if err != nil {
		return fmt.Errorf("generating token: %w", err)
	}

	fmt.Println(token)
	return nil
}

func colorStatus(status string) string {
	switch status {
	case "Open":
		return color.YellowString(status)
	case "Assigned":
		return color.CyanString(status)
	case "Closed":
		return color.GreenString(status)
	default:
		return status
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
