package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/meridiantours/meridian/pkg/adminsdk"
)

var rootCmd = &cobra.Command{
	Use:   "meridianctl",
	Short: "Meridian admin CLI",
	Long:  "A CLI for operating the Meridian Tours admin backend.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadConfig()
		// Env var overrides are applied in newClient()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format: table, json, raw")
	rootCmd.PersistentFlags().StringVar(&outputField, "field", "", "Print only this field (use with -format=raw)")

	rootCmd.AddCommand(bootstrapCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(clientsCmd())
	rootCmd.AddCommand(applicationsCmd())
	rootCmd.AddCommand(auditCmd())
	rootCmd.AddCommand(keysCmd())
	rootCmd.AddCommand(statsCmd())
}

// --- bootstrap ---

func bootstrapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the initial super_admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, _ := cmd.Flags().GetString("token")
			if token == "" {
				token = os.Getenv("MERIDIAN_BOOTSTRAP_TOKEN")
			}
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			fullName, _ := cmd.Flags().GetString("full-name")
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = promptLine("Admin password: ")
			}
			client := newClient()
			result, err := client.Bootstrap(cmd.Context(), token, adminsdk.BootstrapRequest{
				AdminUsername: username,
				AdminEmail:    email,
				AdminFullName: fullName,
				AdminPassword: password,
			})
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(map[string]any{"admin_user_id": result.AdminUserID})
			return nil
		},
	}
	cmd.Flags().String("token", "", "Bootstrap token (or MERIDIAN_BOOTSTRAP_TOKEN)")
	cmd.Flags().String("username", "admin", "Username for the first account")
	cmd.Flags().String("email", "", "Email for the first account")
	cmd.Flags().String("full-name", "Administrator", "Display name for the first account")
	cmd.Flags().String("password", "", "Password for the first account (prompted when omitted)")
	return cmd
}

// --- login ---

func loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			if username == "" {
				username = promptLine("Username: ")
			}
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = promptLine("Password: ")
			}

			client := newClient()
			tok, err := client.Login(cmd.Context(), username, password)

			var mfaErr *adminsdk.MFARequiredError
			if errors.As(err, &mfaErr) {
				method, _ := cmd.Flags().GetString("method")
				code, _ := cmd.Flags().GetString("code")
				if code == "" {
					code = promptLine("MFA code: ")
				}
				tok, err = client.CompleteMFA(cmd.Context(), mfaErr.MFAToken, method, code)
			}
			if err != nil {
				printError(err.Error())
				return nil
			}

			cfg.Token = tok.AccessToken
			cfg.RefreshToken = tok.RefreshToken
			cfg.ExpiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second).Format(time.RFC3339)
			if err := saveConfig(); err == nil {
				fmt.Fprintln(os.Stderr, "Token saved to config.")
			}
			printResult(map[string]any{
				"token_type": tok.TokenType,
				"expires_in": tok.ExpiresIn,
			})
			return nil
		},
	}
	cmd.Flags().String("username", "", "Username (prompted when omitted)")
	cmd.Flags().String("password", "", "Password (prompted when omitted)")
	cmd.Flags().String("method", "totp", "MFA method when challenged: totp, backup_codes")
	cmd.Flags().String("code", "", "MFA code when challenged (prompted when omitted)")
	return cmd
}

// --- clients ---

func clientsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "clients", Short: "Manage CRM clients"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			nationality, _ := cmd.Flags().GetString("nationality")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			sess, err := newSession()
			if err != nil {
				printError(err.Error())
				return nil
			}
			defer persistSession(sess)
			result, err := sess.ListClients(cmd.Context(), adminsdk.ListClientsOptions{
				Search:      search,
				Nationality: nationality,
				Limit:       limit,
				Offset:      offset,
			})
			if err != nil {
				printError(err.Error())
				return nil
			}
			if outputFormat == "json" {
				printResult(result)
				return nil
			}
			rows := make([][]string, 0, len(result.Clients))
			for _, c := range result.Clients {
				rows = append(rows, []string{c.ID, c.FullName, c.Email, c.Phone, fmt.Sprintf("%v", c.Active)})
			}
			printRows([]string{"ID", "NAME", "EMAIL", "PHONE", "ACTIVE"}, rows)
			return nil
		},
	}
	listCmd.Flags().String("search", "", "Match against name, email or phone")
	listCmd.Flags().String("nationality", "", "Filter by nationality")
	listCmd.Flags().Int("limit", 50, "Page size")
	listCmd.Flags().Int("offset", 0, "Page offset")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a client and their applications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				printError(err.Error())
				return nil
			}
			defer persistSession(sess)
			detail, err := sess.GetClient(cmd.Context(), args[0])
			if err != nil {
				printError(err.Error())
				return nil
			}
			if outputFormat == "json" {
				printResult(detail)
				return nil
			}
			printResult(detail.Client)
			if len(detail.Applications) > 0 {
				fmt.Println()
				printRows(applicationHeader, applicationRows(detail.Applications))
			}
			return nil
		},
	}

	cmd.AddCommand(listCmd, getCmd)
	return cmd
}

// --- applications ---

func applicationsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "applications", Short: "Manage visa and licensing applications"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List applications",
		RunE: func(cmd *cobra.Command, args []string) error {
			clientID, _ := cmd.Flags().GetString("client")
			appType, _ := cmd.Flags().GetString("type")
			status, _ := cmd.Flags().GetString("status")
			priority, _ := cmd.Flags().GetString("priority")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")
			sess, err := newSession()
			if err != nil {
				printError(err.Error())
				return nil
			}
			defer persistSession(sess)
			result, err := sess.ListApplications(cmd.Context(), adminsdk.ListApplicationsOptions{
				ClientID: clientID,
				Type:     appType,
				Status:   status,
				Priority: priority,
				Limit:    limit,
				Offset:   offset,
			})
			if err != nil {
				printError(err.Error())
				return nil
			}
			if outputFormat == "json" {
				printResult(result)
				return nil
			}
			printRows(applicationHeader, applicationRows(result.Applications))
			return nil
		},
	}
	listCmd.Flags().String("client", "", "Filter by client ID")
	listCmd.Flags().String("type", "", "Filter by type: visa, business_license, company_incorporation")
	listCmd.Flags().String("status", "", "Filter by status")
	listCmd.Flags().String("priority", "", "Filter by priority: standard, urgent")
	listCmd.Flags().Int("limit", 50, "Page size")
	listCmd.Flags().Int("offset", 0, "Page offset")

	transitionCmd := &cobra.Command{
		Use:   "transition <id> <status>",
		Short: "Move an application to a new status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, _ := cmd.Flags().GetString("note")
			sess, err := newSession()
			if err != nil {
				printError(err.Error())
				return nil
			}
			defer persistSession(sess)
			result, err := sess.TransitionApplication(cmd.Context(), args[0], adminsdk.TransitionRequest{
				Status: args[1],
				Note:   note,
			})
			if err != nil {
				printError(err.Error())
				return nil
			}
			printResult(result)
			return nil
		},
	}
	transitionCmd.Flags().String("note", "", "Reviewer note recorded in the history")

	trackCmd := &cobra.Command{
		Use:   "track <tracking-id>",
		Short: "Show the public status for a tracking reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Public endpoint, no session needed
			client := newClient()
			view, err := client.Track(cmd.Context(), args[0])
			if err != nil {
				printError(err.Error())
				return nil
			}
			if outputFormat == "json" {
				printResult(view)
				return nil
			}
			data := toMap(view)
			delete(data, "timeline")
			printResult(data)
			if len(view.Timeline) > 0 {
				fmt.Println()
				rows := make([][]string, 0, len(view.Timeline))
				for _, e := range view.Timeline {
					rows = append(rows, []string{e.Status, e.OccurredAt})
				}
				printRows([]string{"STATUS", "AT"}, rows)
			}
			return nil
		},
	}

	cmd.AddCommand(listCmd, transitionCmd, trackCmd)
	return cmd
}

// --- audit ---

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "audit", Short: "Inspect the audit trail"}

	tailCmd := &cobra.Command{
		Use:   "tail",
		Short: "Show the most recent audit entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			actor, _ := cmd.Flags().GetString("actor")
			action, _ := cmd.Flags().GetString("action")
			resourceType, _ := cmd.Flags().GetString("resource-type")
			resourceID, _ := cmd.Flags().GetString("resource-id")
			limit, _ := cmd.Flags().GetInt("limit")
			sess, err := newSession()
			if err != nil {
				printError(err.Error())
				return nil
			}
			defer persistSession(sess)
			result, err := sess.ListAuditLogs(cmd.Context(), adminsdk.ListAuditLogsOptions{
				ActorID:      actor,
				Action:       action,
				ResourceType: resourceType,
				ResourceID:   resourceID,
				Limit:        limit,
			})
			if err != nil {
				printError(err.Error())
				return nil
			}
			if outputFormat == "json" {
				printResult(result)
				return nil
			}
			// The API returns newest first; flip so the tail reads like a log
			rows := make([][]string, 0, len(result.Entries))
			for i := len(result.Entries) - 1; i >= 0; i-- {
				e := result.Entries[i]
				resource := e.ResourceType
				if e.ResourceID != "" {
					resource += "/" + e.ResourceID
				}
				rows = append(rows, []string{e.CreatedAt, e.ActorID, e.Action, resource})
			}
			printRows([]string{"TIME", "ACTOR", "ACTION", "RESOURCE"}, rows)
			return nil
		},
	}
	tailCmd.Flags().String("actor", "", "Filter by actor ID")
	tailCmd.Flags().String("action", "", "Filter by action, e.g. clients.create")
	tailCmd.Flags().String("resource-type", "", "Filter by resource type")
	tailCmd.Flags().String("resource-id", "", "Filter by resource ID")
	tailCmd.Flags().Int("limit", 20, "Number of entries")

	cmd.AddCommand(tailCmd)
	return cmd
}

// --- keys ---

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "keys", Short: "Manage JWT signing keys"}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List signing keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				printError(err.Error())
				return nil
			}
			defer persistSession(sess)
			result, err := sess.ListKeys(cmd.Context())
			if err != nil {
				printError(err.Error())
				return nil
			}
			if outputFormat == "json" {
				printResult(result)
				return nil
			}
			rows := make([][]string, 0, len(result.Keys))
			for _, k := range result.Keys {
				status := "active"
				if k.RetiredAt != nil {
					status = "retired"
				}
				rows = append(rows, []string{k.Kid, k.Algorithm, status, k.CreatedAt, k.ExpiresAt})
			}
			printRows([]string{"KID", "ALGORITHM", "STATUS", "CREATED", "EXPIRES"}, rows)
			return nil
		},
	}

	rotateCmd := &cobra.Command{
		Use:   "rotate",
		Short: "Generate a new signing key",
		RunE: func(cmd *cobra.Command, args []string) error {
			retire, _ := cmd.Flags().GetBool("retire-existing")
			sess, err := newSession()
			if err != nil {
				printError(err.Error())
				return nil
			}
			defer persistSession(sess)
			result, err := sess.RotateKey(cmd.Context(), adminsdk.RotateKeyRequest{RetireExisting: retire})
			if err != nil {
				printError(err.Error())
				return nil
			}
			if outputFormat == "json" {
				printResult(result)
				return nil
			}
			out := map[string]any{
				"new_kid":     result.NewKey.Kid,
				"algorithm":   result.NewKey.Algorithm,
				"expires_at":  result.NewKey.ExpiresAt,
				"active_keys": result.ActiveKeys,
			}
			if len(result.RetiredKeys) > 0 {
				kids := make([]string, len(result.RetiredKeys))
				for i, k := range result.RetiredKeys {
					kids[i] = k.Kid
				}
				out["retired"] = strings.Join(kids, ", ")
			}
			printResult(out)
			return nil
		},
	}
	rotateCmd.Flags().Bool("retire-existing", false, "Retire the currently active keys")

	retireCmd := &cobra.Command{
		Use:   "retire <kid>",
		Short: "Retire a signing key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				printError(err.Error())
				return nil
			}
			defer persistSession(sess)
			if err := sess.RetireKey(cmd.Context(), args[0]); err != nil {
				printError(err.Error())
				return nil
			}
			printSuccess("Success! Key retired: " + args[0])
			return nil
		},
	}

	cmd.AddCommand(listCmd, rotateCmd, retireCmd)
	return cmd
}

// --- stats ---

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession()
			if err != nil {
				printError(err.Error())
				return nil
			}
			defer persistSession(sess)
			result, err := sess.Stats(cmd.Context())
			if err != nil {
				printError(err.Error())
				return nil
			}
			if outputFormat == "json" {
				printResult(result)
				return nil
			}
			data := toMap(result)
			delete(data, "recent_applications")
			delete(data, "recent_audit_entries")
			printResult(data)
			if len(result.RecentApplications) > 0 {
				fmt.Println()
				printRows(applicationHeader, applicationRows(result.RecentApplications))
			}
			return nil
		},
	}
}

// helpers

var applicationHeader = []string{"ID", "TRACKING", "TYPE", "STATUS", "PRIORITY", "CLIENT"}

func applicationRows(apps []adminsdk.ApplicationInfo) [][]string {
	rows := make([][]string, 0, len(apps))
	for _, a := range apps {
		rows = append(rows, []string{a.ID, a.TrackingID, a.Type, a.Status, a.Priority, a.ClientID})
	}
	return rows
}

func promptLine(label string) string {
	fmt.Print(label)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Scan()
	return strings.TrimSpace(scanner.Text())
}
