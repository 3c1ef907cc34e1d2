package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Drivers de catálogo soportados.
const (
	CatalogNone     = "none"
	CatalogPostgres = "postgres"
	CatalogMongo    = "mongo"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App     AppConfig
	HTTP    HTTPConfig
	JWT     JWTConfig
	Ledger  LedgerConfig
	Catalog CatalogConfig
	DB      DBConfig
	Mongo   MongoConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// JWTConfig verificación de tokens emitidos por el proveedor de identidad.
type JWTConfig struct {
	Secret string
	Issuer string // vacío = no se valida el issuer
}

// LedgerConfig parámetros del libro de inventario.
type LedgerConfig struct {
	HistoryLimit      int    // movimientos que conserva la bitácora
	PlaceholderFormat string // nombre para SKUs nuevos; debe contener %s
}

// CatalogConfig selección del almacén de catálogo y límites de consulta.
type CatalogConfig struct {
	Driver        string // none, postgres, mongo
	LookupTimeout time.Duration
}

// Enabled indica si hay un catálogo configurado.
func (c CatalogConfig) Enabled() bool {
	return c.Driver == CatalogPostgres || c.Driver == CatalogMongo
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + c.SSLMode,
	}
	return u.String()
}

// MongoConfig conexión al almacén documental del catálogo.
type MongoConfig struct {
	URI      string
	Database string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde .env / config.env).
// Las env vars tienen prioridad.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "inventory-ledger"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		JWT: JWTConfig{
			Secret: getString(v, "JWT_SECRET", ""),
			Issuer: getString(v, "JWT_ISSUER", ""),
		},
		Ledger: LedgerConfig{
			HistoryLimit:      getInt(v, "LEDGER_HISTORY_LIMIT", 15),
			PlaceholderFormat: getString(v, "LEDGER_PLACEHOLDER_FORMAT", "New Product (%s)"),
		},
		Catalog: CatalogConfig{
			Driver:        strings.ToLower(getString(v, "CATALOG_DRIVER", CatalogNone)),
			LookupTimeout: time.Duration(getInt(v, "CATALOG_LOOKUP_TIMEOUT_MS", 800)) * time.Millisecond,
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "inventory_ledger"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:      getString(v, "MONGO_URI", "mongodb://localhost:27017"),
			Database: getString(v, "MONGO_DATABASE", "inventory"),
		},
	}

	switch cfg.Catalog.Driver {
	case CatalogNone, CatalogPostgres, CatalogMongo:
	default:
		return nil, fmt.Errorf("CATALOG_DRIVER inválido: %q (none, postgres, mongo)", cfg.Catalog.Driver)
	}
	if cfg.Ledger.HistoryLimit < 1 {
		return nil, fmt.Errorf("LEDGER_HISTORY_LIMIT debe ser >= 1, recibido %d", cfg.Ledger.HistoryLimit)
	}
	if !strings.Contains(cfg.Ledger.PlaceholderFormat, "%s") {
		return nil, fmt.Errorf("LEDGER_PLACEHOLDER_FORMAT debe contener %%s")
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if !v.IsSet(key) {
		return def
	}
	if s, ok := v.Get(key).(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return def
		}
		return n
	}
	return v.GetInt(key)
}
