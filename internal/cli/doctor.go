package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/clinicpulse/clinicpulse/internal/config"
	"github.com/clinicpulse/clinicpulse/internal/database"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on the ClinicPulse installation",
	Long: `Run health checks on the ClinicPulse installation.

Checks performed:
  - Database configured
  - Database connection
  - PostgreSQL version ≥13
  - Database migrations completed
  - Dashboard tables exist
  - Update notification triggers exist

Example:
  clinicpulse doctor
  clinicpulse doctor --json`,
	RunE: runDoctor,
}

type CheckResult struct {
	Name       string `json:"name"`
	Pass       bool   `json:"pass"`
	Error      string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Details    string `json:"details,omitempty"`
}

var requiredTables = []string{
	"digital_assets",
	"tasks",
	"competitors",
	"reviews",
	"web_pages",
	"kpi_timeseries",
}

var requiredTriggers = []struct {
	name  string
	table string
}{
	{"digital_assets_notify", "digital_assets"},
	{"tasks_notify", "tasks"},
}

// migrationVersion is swapped in tests; the real one needs a live database.
var migrationVersion = database.GetMigrationVersion

func checkDatabaseConfigured(cfg *config.Config) CheckResult {
	if cfg.DatabaseURL == "" {
		return CheckResult{
			Name:       "Database Configured",
			Pass:       false,
			Error:      "no database URL found",
			Suggestion: "Set DATABASE_URL, database_url in clinicpulse.toml, or --database-url",
		}
	}
	return CheckResult{Name: "Database Configured", Pass: true}
}

func checkDatabaseConnection(ctx context.Context, db *sql.DB) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return CheckResult{
			Name:       "Database Connection",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Verify DATABASE_URL and ensure PostgreSQL is running",
		}
	}
	return CheckResult{Name: "Database Connection", Pass: true}
}

func checkPostgreSQLVersion(ctx context.Context, db *sql.DB) CheckResult {
	var version string
	if err := db.QueryRowContext(ctx, "SHOW server_version").Scan(&version); err != nil {
		return CheckResult{Name: "PostgreSQL Version", Pass: false, Error: err.Error()}
	}

	// e.g. "17.1 (Debian 17.1-1)"
	fields := strings.Fields(version)
	if len(fields) == 0 {
		return CheckResult{Name: "PostgreSQL Version", Pass: false, Error: "empty server_version"}
	}
	number := fields[0]
	major, _ := strconv.Atoi(strings.Split(number, ".")[0])

	if major < 13 {
		return CheckResult{
			Name:       "PostgreSQL Version",
			Pass:       false,
			Error:      fmt.Sprintf("Version %s found, need ≥13", number),
			Suggestion: "Upgrade PostgreSQL to version 13 or higher",
		}
	}
	return CheckResult{Name: "PostgreSQL Version", Pass: true, Details: number}
}

func checkMigrations(cfg *config.Config) CheckResult {
	version, dirty, err := migrationVersion(cfg.DatabaseURL)
	if err != nil {
		return CheckResult{
			Name:       "Database Migrations",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Start the server once to apply migrations",
		}
	}

	if dirty {
		return CheckResult{
			Name:       "Database Migrations",
			Pass:       false,
			Error:      "Migration state is dirty",
			Suggestion: "Fix dirty migration state, may need manual intervention",
		}
	}

	if version != database.LatestMigrationVersion {
		return CheckResult{
			Name:       "Database Migrations",
			Pass:       false,
			Error:      fmt.Sprintf("Migration version %d, expected %d", version, database.LatestMigrationVersion),
			Suggestion: "Start the server once to apply migrations",
		}
	}

	return CheckResult{Name: "Database Migrations", Pass: true, Details: fmt.Sprintf("v%d", version)}
}

func checkTables(ctx context.Context, db *sql.DB) CheckResult {
	rows, err := db.QueryContext(ctx, `
		SELECT tablename
		FROM pg_tables
		WHERE schemaname = 'public' AND tablename = ANY($1)
	`, pq.Array(requiredTables))
	if err != nil {
		return CheckResult{Name: "Dashboard Tables", Pass: false, Error: err.Error()}
	}
	defer func() { _ = rows.Close() }()

	found := make(map[string]bool)
	for rows.Next() {
		var name string
		_ = rows.Scan(&name)
		found[name] = true
	}

	var missing []string
	for _, table := range requiredTables {
		if !found[table] {
			missing = append(missing, table)
		}
	}

	if len(missing) > 0 {
		return CheckResult{
			Name:       "Dashboard Tables",
			Pass:       false,
			Error:      fmt.Sprintf("Missing %d tables: %s", len(missing), strings.Join(missing, ", ")),
			Suggestion: "Run migrations to create missing tables",
		}
	}

	return CheckResult{
		Name:    "Dashboard Tables",
		Pass:    true,
		Details: fmt.Sprintf("%d/%d tables found", len(requiredTables), len(requiredTables)),
	}
}

func checkNotifyTriggers(ctx context.Context, db *sql.DB) CheckResult {
	triggerNames := make([]string, len(requiredTriggers))
	for i, t := range requiredTriggers {
		triggerNames[i] = t.name
	}

	rows, err := db.QueryContext(ctx, `
		SELECT tgname, tgrelid::regclass::text
		FROM pg_trigger
		WHERE tgname = ANY($1)
	`, pq.Array(triggerNames))
	if err != nil {
		return CheckResult{Name: "Update Triggers", Pass: false, Error: err.Error()}
	}
	defer func() { _ = rows.Close() }()

	found := make(map[string]string)
	for rows.Next() {
		var name, table string
		_ = rows.Scan(&name, &table)
		found[name] = table
	}

	var missing []string
	for _, trigger := range requiredTriggers {
		if table, ok := found[trigger.name]; !ok || table != trigger.table {
			missing = append(missing, trigger.name)
		}
	}

	if len(missing) > 0 {
		return CheckResult{
			Name:       "Update Triggers",
			Pass:       false,
			Error:      fmt.Sprintf("Missing triggers: %s", strings.Join(missing, ", ")),
			Suggestion: "Run migrations to create missing triggers",
		}
	}

	return CheckResult{
		Name:    "Update Triggers",
		Pass:    true,
		Details: fmt.Sprintf("%d/%d triggers found", len(requiredTriggers), len(requiredTriggers)),
	}
}

// runChecks connects with the pgx driver and runs every check in order.
func runChecks(ctx context.Context, cfg *config.Config, open func(string) (*sql.DB, error)) []CheckResult {
	results := []CheckResult{checkDatabaseConfigured(cfg)}
	if !results[0].Pass {
		return results
	}

	db, err := open(cfg.DatabaseURL)
	if err != nil {
		return append(results, CheckResult{
			Name:       "Database Connection",
			Pass:       false,
			Error:      err.Error(),
			Suggestion: "Verify DATABASE_URL is valid",
		})
	}
	defer func() { _ = db.Close() }()

	conn := checkDatabaseConnection(ctx, db)
	results = append(results, conn)
	if !conn.Pass {
		return results
	}

	return append(results,
		checkPostgreSQLVersion(ctx, db),
		checkMigrations(cfg),
		checkTables(ctx, db),
		checkNotifyTriggers(ctx, db),
	)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	results := runChecks(cmd.Context(), cfg, func(url string) (*sql.DB, error) {
		return sql.Open("pgx", url)
	})

	w := cmd.OutOrStdout()
	if jsonOutput {
		if err := outputJSON(w, results); err != nil {
			return err
		}
	} else {
		outputDoctorHuman(w, results)
	}

	failed := 0
	for _, r := range results {
		if !r.Pass {
			failed++
		}
	}
	if failed > 0 {
		return errors.New(strconv.Itoa(failed) + " health checks failed")
	}
	return nil
}

func outputDoctorHuman(w io.Writer, results []CheckResult) {
	_, _ = fmt.Fprintln(w, "\nClinicPulse Health Check")

	passed := 0
	for _, r := range results {
		icon := "✓"
		if r.Pass {
			passed++
		} else {
			icon = "✗"
		}

		_, _ = fmt.Fprintf(w, "%s %s", icon, r.Name)
		if r.Details != "" {
			_, _ = fmt.Fprintf(w, " (%s)", r.Details)
		}
		_, _ = fmt.Fprintln(w)

		if !r.Pass {
			if r.Error != "" {
				_, _ = fmt.Fprintf(w, "  Error: %s\n", r.Error)
			}
			if r.Suggestion != "" {
				_, _ = fmt.Fprintf(w, "  Hint: %s\n", r.Suggestion)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "\n%d/%d checks passed\n\n", passed, len(results))
}

func init() {
	doctorCmd.Flags().Bool("json", false, "Output results as JSON")
}
