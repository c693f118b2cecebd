package main

import (
	"log"
	"net/http"

	"citizenshield.app/server"
)

func main() {
	cfg := loadConfig()

	var mailer server.Mailer
	if cfg.EmailUser != "" && cfg.EmailPass != "" {
		m, err := server.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass)
		if err != nil {
			log.Fatal(err)
		}
		mailer = m
	} else {
		log.Printf("[mail] EMAIL_USER/EMAIL_PASS not set, mail channel disabled")
	}

	s := server.New(mailer)

	http.Handle("/update-location", server.WithCors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "POST":
			s.UpdateLocationHandler(w, r)
		default:
			http.Error(w, "unsupported method "+r.Method, 400)
		}
	})))

	http.Handle("/send-sos", server.WithCors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "POST":
			s.SendSOSHandler(w, r)
		default:
			http.Error(w, "unsupported method "+r.Method, 400)
		}
	})))

	http.Handle("/nearby-users", server.WithCors(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case "GET":
			s.NearbyUsersHandler(w, r)
		default:
			http.Error(w, "unsupported method "+r.Method, 400)
		}
	})))

	http.Handle("/health", server.WithCors(http.HandlerFunc(s.HealthHandler)))

	http.HandleFunc("/events", s.EventsHandler)

	log.Printf("[server] listening on %s", cfg.Addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, nil))
}
