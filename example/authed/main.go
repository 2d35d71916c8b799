// An authenticated RPC service using sealed service tokens, with Prometheus
// metrics exposed on a side listener.
//
// Configure via .env or environment:
//
//	TOKEN_KEY    hex-encoded 32-byte sealing key (generated if unset)
//	LISTEN_ADDR  service address (default :8080)
//	METRICS_ADDR metrics address (default :9090)
//
// On startup a demo token is printed; call the service with:
//
//	curl -X POST 'http://localhost:8080/?Action=Ledger.RecordEntry' \
//	    -H "Authorization: Bearer $TOKEN" \
//	    -d 'Account=cash&Amount=42'
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mnehpets/queryserve/auth"
	"github.com/mnehpets/queryserve/awsquery"
	"github.com/mnehpets/queryserve/middleware"
	"github.com/mnehpets/queryserve/operation"
	"github.com/mnehpets/queryserve/routing"
)

type RecordEntryInput struct {
	Account string  `query:"Account" validate:"required"`
	Amount  float64 `query:"Amount" validate:"ne=0"`
}

type RecordEntryOutput struct {
	Account   string  `xml:"Account"`
	Amount    float64 `xml:"Amount"`
	Recorded  bool    `xml:"Recorded"`
	Principal string  `xml:"Principal"`
}

func recordEntry(ctx context.Context, in RecordEntryInput) (RecordEntryOutput, error) {
	out := RecordEntryOutput{Account: in.Account, Amount: in.Amount, Recorded: true}
	if p, ok := auth.PrincipalFromContext(ctx); ok {
		out.Principal = p.Subject
	}
	return out, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func sealingKey() ([]byte, error) {
	if raw := os.Getenv("TOKEN_KEY"); raw != "" {
		key, err := hex.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("TOKEN_KEY is not hex: %w", err)
		}
		return key, nil
	}
	// Ephemeral key for demo runs. Tokens do not survive a restart.
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	key, err := sealingKey()
	if err != nil {
		logger.Fatal("bad token key", zap.Error(err))
	}
	codec, err := auth.NewTokenCodec("k1", map[string][]byte{"k1": key})
	if err != nil {
		logger.Fatal("token codec", zap.Error(err))
	}

	demo, err := codec.Issue("svc-demo", []string{"ledger:write"}, 24*time.Hour)
	if err != nil {
		logger.Fatal("issue demo token", zap.Error(err))
	}
	fmt.Println("demo token:", demo)

	collector := middleware.NewCollector("ledger")

	rt := awsquery.NewRouter([]routing.Entry[routing.Service]{
		operation.New("Ledger.RecordEntry", recordEntry).Entry(),
	})
	layered := awsquery.Layer(rt, middleware.Chained(
		middleware.Recover(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.Metrics(collector),
		middleware.APIHeaders(),
		auth.RequireToken(codec),
	))

	metricsAddr := getenv("METRICS_ADDR", ":9090")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collector.Handler())
		logger.Info("metrics listening", zap.String("addr", metricsAddr))
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			logger.Error("metrics server exited", zap.Error(err))
		}
	}()

	addr := getenv("LISTEN_ADDR", ":8080")
	logger.Info("listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, awsquery.Handler(awsquery.Boxed(layered))); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
