package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"strconv"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/saltyorg/contactbook/internal/config"
)

func init() {
	// modernc registers as "sqlite", which sqlx does not know by default
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// openDriver builds the DSN for the configured driver and opens a handle.
// Nothing is dialed until the first ping.
func openDriver(s config.Database) (*sqlx.DB, error) {
	switch s.Driver {
	case config.DriverMySQL:
		connector, err := mysql.NewConnector(mysqlConfig(s))
		if err != nil {
			return nil, err
		}
		return sqlx.NewDb(sql.OpenDB(connector), "mysql"), nil

	case config.DriverPostgres:
		connConfig, err := pgx.ParseConfig(postgresURL(s))
		if err != nil {
			return nil, err
		}
		return sqlx.NewDb(stdlib.OpenDB(*connConfig), "pgx"), nil

	case config.DriverSQLite:
		return sqlx.Open("sqlite", sqliteDSN(s.Name))

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", s.Driver)
	}
}

func mysqlConfig(s config.Database) *mysql.Config {
	cfg := mysql.NewConfig()
	cfg.User = s.User
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	cfg.Addr = s.Host
	cfg.DBName = s.Name
	cfg.Timeout = s.Timeouts.Connect
	cfg.ReadTimeout = s.Timeouts.Read
	cfg.WriteTimeout = s.Timeouts.Write
	return cfg
}

func postgresURL(s config.Database) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   s.Host,
		Path:   "/" + s.Name,
	}
	switch {
	case s.User != "" && s.Password != "":
		u.User = url.UserPassword(s.User, s.Password)
	case s.User != "":
		u.User = url.User(s.User)
	}

	if s.Timeouts.Connect > 0 {
		// connect_timeout is whole seconds and 0 means wait forever
		seconds := max(int(s.Timeouts.Connect.Seconds()), 1)
		u.RawQuery = url.Values{"connect_timeout": {strconv.Itoa(seconds)}}.Encode()
	}

	return u.String()
}

func sqliteDSN(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func describeTarget(s config.Database) string {
	if s.Driver == config.DriverSQLite {
		return s.Name
	}
	return s.Host + "/" + s.Name
}
