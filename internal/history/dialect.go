package history

import (
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb" // for sqlserver
	_ "github.com/go-sql-driver/mysql"   // for mysql
	_ "github.com/lib/pq"                // for postgres
	_ "modernc.org/sqlite"               // for sqlite
)

// dialect holds the per-database SQL differences
type dialect struct {
	driver      string
	placeholder func(n int) string
	createTable string
	recent      string
}

const columns = "id, kind, class_name, method, endpoint, status, success, duration_ms, created_at"

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "sqlite":
		return dialect{
			driver:      driver,
			placeholder: question,
			createTable: createTable("TEXT", "TEXT", "INTEGER", "INTEGER", "CREATE TABLE IF NOT EXISTS"),
			recent:      "SELECT " + columns + " FROM generation_history ORDER BY created_at DESC LIMIT ?",
		}, nil
	case "postgres":
		return dialect{
			driver:      driver,
			placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
			createTable: createTable("VARCHAR(255)", "TEXT", "BOOLEAN", "BIGINT", "CREATE TABLE IF NOT EXISTS"),
			recent:      "SELECT " + columns + " FROM generation_history ORDER BY created_at DESC LIMIT $1",
		}, nil
	case "mysql":
		return dialect{
			driver:      driver,
			placeholder: question,
			createTable: createTable("VARCHAR(255)", "TEXT", "BOOLEAN", "BIGINT", "CREATE TABLE IF NOT EXISTS"),
			recent:      "SELECT " + columns + " FROM generation_history ORDER BY created_at DESC LIMIT ?",
		}, nil
	case "sqlserver":
		return dialect{
			driver:      driver,
			placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) },
			createTable: "IF OBJECT_ID('generation_history', 'U') IS NULL " +
				createTable("NVARCHAR(255)", "NVARCHAR(MAX)", "BIT", "BIGINT", "CREATE TABLE"),
			recent: "SELECT TOP (@p1) " + columns + " FROM generation_history ORDER BY created_at DESC",
		}, nil
	default:
		return dialect{}, fmt.Errorf("unsupported database type: %s", driver)
	}
}

func question(int) string { return "?" }

func createTable(varchar, text, boolean, bigint, create string) string {
	return fmt.Sprintf(`%s generation_history (
	id VARCHAR(36) PRIMARY KEY,
	kind VARCHAR(16) NOT NULL,
	class_name %[2]s NOT NULL,
	method VARCHAR(16) NOT NULL,
	endpoint %[3]s NOT NULL,
	status VARCHAR(32) NOT NULL,
	success %[4]s NOT NULL,
	duration_ms %[5]s NOT NULL,
	created_at %[5]s NOT NULL
)`, create, varchar, text, boolean, bigint)
}

func (d dialect) insert() string {
	marks := make([]string, 9)
	for i := range marks {
		marks[i] = d.placeholder(i + 1)
	}
	return "INSERT INTO generation_history (" + columns + ") VALUES (" + strings.Join(marks, ", ") + ")"
}
