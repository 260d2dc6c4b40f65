package main

import (
	"log"
	"net/http"

	"github.com/swisspair/pairing/internal/api"
	"github.com/swisspair/pairing/internal/client"
	"github.com/swisspair/pairing/internal/config"
	"github.com/swisspair/pairing/internal/repository"
	"github.com/swisspair/pairing/internal/service"
)

func main() {
	dbCfg := config.LoadDatabaseConfig()
	db, err := config.NewDatabaseConnection(dbCfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	appCfg := config.LoadAppConfig()

	repo := repository.NewRoundRepository(db)
	roster := client.NewRosterClient(appCfg.TournamentServiceURL)

	var notifier client.NotifierClient
	if appCfg.SendGridAPIKey != "" {
		notifier = client.NewSendGridNotifier(client.NotifierConfig{
			APIKey:    appCfg.SendGridAPIKey,
			FromEmail: appCfg.SendGridFromEmail,
			FromName:  appCfg.SendGridFromName,
		})
	} else {
		notifier = client.NewConsoleNotifier()
	}

	svc := service.NewPairingService(repo, roster, notifier)
	router := api.NewRouter(svc)

	log.Printf("Pairing service starting on port %s", appCfg.Port)
	if err := http.ListenAndServe(":"+appCfg.Port, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
