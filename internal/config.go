package internal

import (
	"flag"
	"os"
)

var c *config

const (
	RunAddress        = "RUN_ADDRESS"
	DatabaseURI       = "DATABASE_URI"
	AllowedSender     = "ALLOWED_SENDER"
	InboundSigningKey = "INBOUND_SIGNING_KEY"
	JWTSecret         = "JWT_SECRET"
)

const (
	defaultRunAddress    = "localhost:8080"
	defaultDatabaseURI   = "host=localhost port=5432 user=postgres password=12345 sslmode=disable"
	defaultAllowedSender = "venmo@venmo.com"
)

type config struct {
	RunAddress        string
	DatabaseURI       string
	AllowedSender     string
	InboundSigningKey string
	JWTSecret         string
}

func NewConfig() *config {
	c = new(config)

	flag.StringVar(&c.RunAddress, "a", setEnvOrDefault(RunAddress, defaultRunAddress), "host to listen on")
	flag.StringVar(&c.DatabaseURI, "d", setEnvOrDefault(DatabaseURI, defaultDatabaseURI), "postgres connection path")
	flag.StringVar(&c.AllowedSender, "s", setEnvOrDefault(AllowedSender, defaultAllowedSender), "allow-listed notification sender")
	flag.StringVar(&c.InboundSigningKey, "k", setEnvOrDefault(InboundSigningKey, ""), "inbound delivery signing key, empty disables verification")
	flag.StringVar(&c.JWTSecret, "j", setEnvOrDefault(JWTSecret, "secret"), "session token secret")

	flag.Parse()
	return c
}

func setEnvOrDefault(env, def string) string {
	res, e := os.LookupEnv(env)
	if !e {
		res = def
	}
	return res
}
