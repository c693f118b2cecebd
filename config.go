package main

import (
	"os"
	"strconv"
)

type Config struct {
	// Listen address, e.g. ":3000"
	Addr string

	// SMTP settings for the emergency contact channel
	SMTPHost  string
	SMTPPort  int
	EmailUser string
	EmailPass string
}

func loadConfig() Config {
	var cfg Config

	cfg.Addr = ":" + getenv("PORT", "3000")
	cfg.SMTPHost = getenv("SMTP_HOST", "smtp.gmail.com")
	cfg.EmailUser = os.Getenv("EMAIL_USER")
	cfg.EmailPass = os.Getenv("EMAIL_PASS")

	port, err := strconv.Atoi(getenv("SMTP_PORT", "587"))
	if err != nil {
		port = 587
	}
	cfg.SMTPPort = port

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
