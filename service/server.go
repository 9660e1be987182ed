package service

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/handlers"
	"github.com/sirupsen/logrus"
)

// RunServer serves the router until SIGINT, then drains connections for up
// to fifteen seconds before returning.
func RunServer(port string, router http.Handler, log *logrus.Logger) {
	waitDuration := time.Second * 15

	srv := &http.Server{
		Addr: fmt.Sprintf("0.0.0.0:%s", port),
		// Timeouts guard against slow client attacks.
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(router),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server stopped due to error %v", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), waitDuration)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("Server did not shut down cleanly")
	}
	log.Infof("Service shutting down at : %v", time.Now())
}
