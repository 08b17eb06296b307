package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Modos de verificación de rol (ver auth.RoleAdmits).
const (
	RoleCheckMatch  = "match"  // admite solo si el rol del usuario es el requerido
	RoleCheckLegacy = "legacy" // admite cuando el rol difiere; solo compatibilidad
)

// Políticas de reconciliación de líneas de pedido en la actualización.
const (
	ItemPolicyUpsert  = "upsert"  // actualiza/inserta, conserva las líneas ausentes
	ItemPolicyReplace = "replace" // además elimina las líneas ausentes en la petición
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App    AppConfig
	DB     DBConfig
	JWT    JWTConfig
	HTTP   HTTPConfig
	Upload UploadConfig
	Auth   AuthConfig
	Orders OrdersConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
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
	AutoMigrate bool // aplica las migraciones embebidas al arrancar
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
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host        string
	Port        int
	CORSOrigins string
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// UploadConfig almacenamiento de imágenes de productos.
type UploadConfig struct {
	Dir      string
	MaxBytes int
}

// AuthConfig reglas del gate de roles.
type AuthConfig struct {
	RoleCheck string // match | legacy
}

// OrdersConfig comportamiento del agregado de pedidos.
type OrdersConfig struct {
	ItemPolicy  string // upsert | replace
	ItemWorkers int    // escrituras concurrentes de líneas (modo no atómico)
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, DB_PORT, JWT_SECRET, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "produmax-api"),
			LogLevel: getString(v, "APP_LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "produmax"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			AutoMigrate: getBool(v, "DB_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 1440),
			Issuer:     getString(v, "JWT_ISSUER", "produmax-api"),
		},
		HTTP: HTTPConfig{
			Host:        getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:        getInt(v, "HTTP_PORT", 3000),
			CORSOrigins: getString(v, "HTTP_CORS_ORIGINS", "*"),
		},
		Upload: UploadConfig{
			Dir:      getString(v, "UPLOAD_DIR", "uploads"),
			MaxBytes: getInt(v, "UPLOAD_MAX_BYTES", 1000*1000),
		},
		Auth: AuthConfig{
			RoleCheck: strings.ToLower(getString(v, "AUTH_ROLE_CHECK", RoleCheckMatch)),
		},
		Orders: OrdersConfig{
			ItemPolicy:  strings.ToLower(getString(v, "ORDER_ITEM_POLICY", ItemPolicyUpsert)),
			ItemWorkers: getInt(v, "ORDER_ITEM_WORKERS", 4),
		},
	}
}

// Validate rechaza configuraciones con las que el proceso no debe arrancar.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: JWT_SECRET es requerido")
	}
	if c.JWT.Expiration <= 0 {
		return fmt.Errorf("config: JWT_EXPIRATION_MINUTES debe ser positivo")
	}
	switch c.Auth.RoleCheck {
	case RoleCheckMatch, RoleCheckLegacy:
	default:
		return fmt.Errorf("config: AUTH_ROLE_CHECK inválido %q", c.Auth.RoleCheck)
	}
	switch c.Orders.ItemPolicy {
	case ItemPolicyUpsert, ItemPolicyReplace:
	default:
		return fmt.Errorf("config: ORDER_ITEM_POLICY inválido %q", c.Orders.ItemPolicy)
	}
	if c.Orders.ItemWorkers <= 0 {
		c.Orders.ItemWorkers = 1
	}
	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("config: UPLOAD_MAX_BYTES debe ser positivo")
	}
	return nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
