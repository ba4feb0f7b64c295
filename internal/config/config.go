package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	HTTPAddr        string
	DBDSN           string
	JWTIssuer       string
	JWTSecret       string
	JWTTTL          time.Duration
	InternalToken   string
	WebSocketOrigin string
	SafeLevel       decimal.Decimal
	WarningLevel    decimal.Decimal
	MarginCallLevel decimal.Decimal
	DefaultLeverage decimal.Decimal
}

func Load() (Config, error) {
	var c Config
	var missing []string
	c.HTTPAddr = os.Getenv("HTTP_ADDR")
	if c.HTTPAddr == "" {
		missing = append(missing, "HTTP_ADDR")
	}
	c.DBDSN = os.Getenv("DB_DSN")
	if c.DBDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	c.JWTIssuer = os.Getenv("JWT_ISSUER")
	if c.JWTIssuer == "" {
		missing = append(missing, "JWT_ISSUER")
	}
	c.JWTSecret = os.Getenv("JWT_SECRET")
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	jwtTTL := os.Getenv("JWT_TTL")
	if jwtTTL == "" {
		missing = append(missing, "JWT_TTL")
	} else {
		d, err := time.ParseDuration(jwtTTL)
		if err != nil {
			return c, err
		}
		c.JWTTTL = d
	}
	c.InternalToken = os.Getenv("INTERNAL_API_TOKEN")
	if c.InternalToken == "" {
		missing = append(missing, "INTERNAL_API_TOKEN")
	}
	c.WebSocketOrigin = os.Getenv("WS_ORIGIN")
	if c.WebSocketOrigin == "" {
		missing = append(missing, "WS_ORIGIN")
	}
	var err error
	c.SafeLevel, err = levelEnv("SAFE_LEVEL", "50")
	if err != nil {
		return c, err
	}
	c.WarningLevel, err = levelEnv("WARNING_LEVEL", "70")
	if err != nil {
		return c, err
	}
	c.MarginCallLevel, err = levelEnv("MARGIN_CALL_LEVEL", "85")
	if err != nil {
		return c, err
	}
	c.DefaultLeverage, err = levelEnv("DEFAULT_LEVERAGE", "1.50")
	if err != nil {
		return c, err
	}
	if !c.SafeLevel.LessThan(c.WarningLevel) || !c.WarningLevel.LessThan(c.MarginCallLevel) {
		return c, errors.New("utilization levels must be strictly increasing")
	}
	if len(missing) > 0 {
		return c, errors.New("missing required env: " + strings.Join(missing, ","))
	}
	return c, nil
}

func levelEnv(key, fallback string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		raw = fallback
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.New("invalid " + key)
	}
	if !v.GreaterThan(decimal.Zero) {
		return decimal.Zero, errors.New(key + " must be positive")
	}
	return v, nil
}
