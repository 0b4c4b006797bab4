package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"storefront/internal/db"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	DatabaseURL         string
	DBMaxConns          int
	DBMinConns          int
	DBConnLifetimeMin   int
	DBConnectTimeoutSec int

	JWTIssuer           string
	JWTAccessSecret     string
	JWTRefreshSecret    string
	AccessTokenTTLMin   int
	RefreshTokenTTLDays int

	SessionSecret     string
	SessionMaxAgeDays int

	PayPalAPIURL    string
	PayPalClientID  string
	PayPalAppSecret string

	RedisAddr string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	AppName              string
	AppBaseURL           string
	OrdersPageSize       int
	ProductsPageSize     int
	LatestProductsLimit  int
	PaymentMethods       []string
	DefaultPaymentMethod string
}

var defaults = map[string]any{
	"APP_ENV":   "dev",
	"HTTP_ADDR": ":8080",

	"DATABASE_URL":           "",
	"DB_MAX_CONNS":           10,
	"DB_MIN_CONNS":           2,
	"DB_CONN_LIFETIME_MIN":   60,
	"DB_CONNECT_TIMEOUT_SEC": 5,

	"JWT_ISSUER":             "storefront",
	"JWT_ACCESS_SECRET":      "",
	"JWT_REFRESH_SECRET":     "",
	"ACCESS_TOKEN_TTL_MIN":   15,
	"REFRESH_TOKEN_TTL_DAYS": 30,

	"SESSION_SECRET":       "",
	"SESSION_MAX_AGE_DAYS": 30,

	"PAYPAL_API_URL":    "https://api-m.sandbox.paypal.com",
	"PAYPAL_CLIENT_ID":  "",
	"PAYPAL_APP_SECRET": "",

	"REDIS_ADDR": "",

	"SMTP_HOST": "",
	"SMTP_PORT": 587,
	"SMTP_USER": "",
	"SMTP_PASS": "",
	"SMTP_FROM": "",

	"APP_NAME":               "Storefront",
	"APP_BASE_URL":           "http://localhost:8080",
	"ORDERS_PAGE_SIZE":       6,
	"PRODUCTS_PAGE_SIZE":     12,
	"LATEST_PRODUCTS_LIMIT":  4,
	"PAYMENT_METHODS":        "PayPal,Stripe,CashOnDelivery",
	"DEFAULT_PAYMENT_METHOD": "PayPal",
}

// Load reads configuration from the environment. When file is not empty it is
// read first and environment variables override it.
func Load(file string) (Config, error) {
	v := viper.New()
	for k, def := range defaults {
		v.SetDefault(k, def)
	}
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	return Config{
		AppEnv:   v.GetString("APP_ENV"),
		HTTPAddr: v.GetString("HTTP_ADDR"),

		DatabaseURL:         v.GetString("DATABASE_URL"),
		DBMaxConns:          v.GetInt("DB_MAX_CONNS"),
		DBMinConns:          v.GetInt("DB_MIN_CONNS"),
		DBConnLifetimeMin:   v.GetInt("DB_CONN_LIFETIME_MIN"),
		DBConnectTimeoutSec: v.GetInt("DB_CONNECT_TIMEOUT_SEC"),

		JWTIssuer:           v.GetString("JWT_ISSUER"),
		JWTAccessSecret:     v.GetString("JWT_ACCESS_SECRET"),
		JWTRefreshSecret:    v.GetString("JWT_REFRESH_SECRET"),
		AccessTokenTTLMin:   v.GetInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTokenTTLDays: v.GetInt("REFRESH_TOKEN_TTL_DAYS"),

		SessionSecret:     v.GetString("SESSION_SECRET"),
		SessionMaxAgeDays: v.GetInt("SESSION_MAX_AGE_DAYS"),

		PayPalAPIURL:    v.GetString("PAYPAL_API_URL"),
		PayPalClientID:  v.GetString("PAYPAL_CLIENT_ID"),
		PayPalAppSecret: v.GetString("PAYPAL_APP_SECRET"),

		RedisAddr: v.GetString("REDIS_ADDR"),

		SMTPHost: v.GetString("SMTP_HOST"),
		SMTPPort: v.GetInt("SMTP_PORT"),
		SMTPUser: v.GetString("SMTP_USER"),
		SMTPPass: v.GetString("SMTP_PASS"),
		SMTPFrom: v.GetString("SMTP_FROM"),

		AppName:              v.GetString("APP_NAME"),
		AppBaseURL:           v.GetString("APP_BASE_URL"),
		OrdersPageSize:       v.GetInt("ORDERS_PAGE_SIZE"),
		ProductsPageSize:     v.GetInt("PRODUCTS_PAGE_SIZE"),
		LatestProductsLimit:  v.GetInt("LATEST_PRODUCTS_LIMIT"),
		PaymentMethods:       splitList(v.GetString("PAYMENT_METHODS")),
		DefaultPaymentMethod: v.GetString("DEFAULT_PAYMENT_METHOD"),
	}, nil
}

func (c Config) IsProd() bool {
	return c.AppEnv == "prod" || c.AppEnv == "production"
}

func (c Config) PoolOptions() db.PoolOptions {
	return db.PoolOptions{
		MaxConns:       int32(c.DBMaxConns),
		MinConns:       int32(c.DBMinConns),
		ConnLifetime:   time.Duration(c.DBConnLifetimeMin) * time.Minute,
		ConnectTimeout: time.Duration(c.DBConnectTimeoutSec) * time.Second,
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
