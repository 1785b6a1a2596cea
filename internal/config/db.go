package config

const (
	// EngineMySQL selects the gorm mysql driver.
	EngineMySQL = "mysql"
	// EnginePostgres selects the gorm postgres driver.
	EnginePostgres = "postgres"
	// EngineSQLite selects the pure go sqlite driver.
	EngineSQLite = "sqlite"
)

// DB holds the database configuration settings.
type DB struct {
	Extras     string
	Host       string
	Port       int
	User       string
	Password   string `json:"-"`
	Name       string
	GormEngine string `validate:"omitempty,oneof=mysql postgres sqlite"`
	// Path is the sqlite database file, ":memory:" for an in-memory database.
	Path string
	// LogQueries routes every SQL statement to the logger at debug level.
	LogQueries bool
}
