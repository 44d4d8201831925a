package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/LavaJover/shvark-mypvit-relay/internal/domain"
	"github.com/ilyakaznacheev/cleanenv"
)

const (
	ModeSandbox    = "sandbox"
	ModeProduction = "production"
)

type Config struct {
	Env        string `yaml:"env" env:"APP_ENV" env-default:"development"`
	HTTPServer `yaml:"http_server"`
	GRPCServer `yaml:"grpc_server"`
	Storage    `yaml:"storage"`
	LogConfig  `yaml:"log_config"`
	Events     `yaml:"events"`
	MyPVIT     `yaml:"mypvit"`
	Accounts   []Account `yaml:"accounts"`
	Routing    `yaml:"routing"`
}

type HTTPServer struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"PORT" env-default:"5000"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT"`
}

type Storage struct {
	Driver         string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"postgres"`
	Dsn            string `yaml:"dsn" env:"PAYMENT_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH"`
	MongoURI       string `yaml:"mongo_uri" env:"MONGO_URI"`
	MongoDatabase  string `yaml:"mongo_database" env:"MONGO_DATABASE" env-default:"nat_voyages"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"json"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type Events struct {
	Driver      string   `yaml:"driver" env:"EVENTS_DRIVER" env-default:"none"`
	Brokers     []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	Topic       string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"payment-events"`
	NatsURL     string   `yaml:"nats_url" env:"NATS_URL"`
	NatsSubject string   `yaml:"nats_subject" env:"NATS_SUBJECT" env-default:"payments.events"`
}

type MyPVIT struct {
	Mode                string        `yaml:"mode" env:"MYPVIT_ENV" env-default:"sandbox"`
	BaseURL             string        `yaml:"base_url" env:"MYPVIT_BASE_URL" env-default:"https://api.mypvit.pro/v2"`
	RenewBaseURL        string        `yaml:"renew_base_url" env:"MYPVIT_RENEW_BASE_URL" env-default:"https://api.mypvit.pro"`
	CodeURL             string        `yaml:"code_url" env:"MYPVIT_CODE_URL"`
	PaymentCode         string        `yaml:"payment_code" env:"MYPVIT_PAYMENT_CODE"`
	RenewCode           string        `yaml:"renew_code" env:"MYPVIT_RENEW_TOKEN_CODE_URL"`
	CallbackURLCode     string        `yaml:"callback_url_code" env:"MYPVIT_CALLBACK_URL_CODE"`
	BootstrapSecret     string        `yaml:"secret_key" env:"MYPVIT_SECRET_KEY"`
	AgentName           string        `yaml:"agent_name" env:"MYPVIT_AGENT_NAME" env-default:"NAT-VOYAGE"`
	ServiceType         string        `yaml:"service_type" env:"MYPVIT_SERVICE_TYPE" env-default:"RESTFUL"`
	TransactionType     string        `yaml:"transaction_type" env:"MYPVIT_TRANSACTION_TYPE" env-default:"PAYMENT"`
	OwnerCharge         string        `yaml:"owner_charge" env:"MYPVIT_OWNER_CHARGE" env-default:"CUSTOMER"`
	OperatorOwnerCharge string        `yaml:"operator_owner_charge" env:"MYPVIT_OPERATOR_OWNER_CHARGE" env-default:"MERCHANT"`
	FreeInfo            string        `yaml:"free_info" env:"MYPVIT_FREE_INFO" env-default:"Paiement NAT-VOYAGE"`
	DefaultProduct      string        `yaml:"default_product" env:"MYPVIT_DEFAULT_PRODUCT" env-default:"VOYAGE"`
	ReferencePrefix     string        `yaml:"reference_prefix" env:"MYPVIT_REFERENCE_PREFIX" env-default:"NAT"`
	Timeout             time.Duration `yaml:"timeout" env:"MYPVIT_TIMEOUT" env-default:"30s"`
	MinAmount           int64         `yaml:"min_amount" env:"MYPVIT_MIN_AMOUNT" env-default:"500"`
	MaxAmount           int64         `yaml:"max_amount" env:"MYPVIT_MAX_AMOUNT" env-default:"10000000"`
}

// Account is a merchant operation account and the password used to renew
// its secret.
type Account struct {
	Code     string `yaml:"code"`
	Password string `yaml:"password"`
}

type Routing struct {
	TestRoute Route   `yaml:"test_route"`
	Routes    []Route `yaml:"routes"`
}

// Route maps a national number prefix to an operator and the merchant
// account collecting its payments.
type Route struct {
	Name     string `yaml:"name"`
	Prefix   string `yaml:"prefix"`
	Operator string `yaml:"operator"`
	Account  string `yaml:"account"`
}

func (c *Config) Sandbox() bool {
	return !strings.EqualFold(c.MyPVIT.Mode, ModeProduction)
}

func (c *Config) Account(code string) (Account, bool) {
	for _, a := range c.Accounts {
		if a.Code == code {
			return a, true
		}
	}
	return Account{}, false
}

// DefaultAccount is the account of the test route, used by the manual
// gateway endpoints when no account is named.
func (c *Config) DefaultAccount() string {
	return c.Routing.TestRoute.Account
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var missing []string
	if c.MyPVIT.CodeURL == "" {
		missing = append(missing, "mypvit.code_url")
	}
	if c.MyPVIT.PaymentCode == "" {
		missing = append(missing, "mypvit.payment_code")
	}
	if c.MyPVIT.CallbackURLCode == "" {
		missing = append(missing, "mypvit.callback_url_code")
	}
	if len(c.Accounts) == 0 {
		missing = append(missing, "accounts")
	}
	if c.Routing.TestRoute.Account == "" {
		missing = append(missing, "routing.test_route.account")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrConfiguration, strings.Join(missing, ", "))
	}

	for _, a := range c.Accounts {
		if a.Code == "" || a.Password == "" {
			return fmt.Errorf("%w: account %q needs code and password", domain.ErrConfiguration, a.Code)
		}
	}
	routes := append([]Route{c.Routing.TestRoute}, c.Routing.Routes...)
	for _, r := range routes {
		if _, ok := c.Account(r.Account); !ok {
			return fmt.Errorf("%w: route %q uses unknown account %q", domain.ErrConfiguration, r.Name, r.Account)
		}
		if r.Operator == "" {
			return fmt.Errorf("%w: route %q has no operator", domain.ErrConfiguration, r.Name)
		}
	}
	for _, r := range c.Routing.Routes {
		if r.Prefix == "" {
			return fmt.Errorf("%w: route %q has no prefix", domain.ErrConfiguration, r.Name)
		}
	}
	if len(c.MyPVIT.ReferencePrefix) >= domain.MaxReferenceLength {
		return fmt.Errorf("%w: mypvit.reference_prefix %q must be shorter than %d characters",
			domain.ErrConfiguration, c.MyPVIT.ReferencePrefix, domain.MaxReferenceLength)
	}
	if c.MyPVIT.MinAmount <= 0 || c.MyPVIT.MaxAmount < c.MyPVIT.MinAmount {
		return fmt.Errorf("%w: invalid amount bounds [%d, %d]", domain.ErrConfiguration, c.MyPVIT.MinAmount, c.MyPVIT.MaxAmount)
	}
	return nil
}

// Load reads the YAML file at path, applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return &cfg, cfg.Validate()
}

func MustLoad() *Config {

	// Processing env config variable and file
	configPath := os.Getenv("PAYMENT_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("PAYMENT_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		if cfg == nil || !cfg.Sandbox() {
			log.Fatalf("failed to load config: %v", err)
		}
		log.Printf("config incomplete, continuing in sandbox mode: %v", err)
	}

	return cfg
}
