// A command-line caller for AWS Query style services.
//
// Usage:
//
//	go run . -endpoint http://localhost:8080 -action Ledger.RecordEntry \
//	    Account=cash Amount=42
//
// Authentication, via .env or environment:
//
//	TOKEN              static bearer token (e.g. from the authed example)
//	OAUTH_CLIENT_ID    with OAUTH_CLIENT_SECRET and OAUTH_TOKEN_URL, fetch
//	                   tokens through the client-credentials grant instead
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/oauth2/clientcredentials"
)

func httpClient(ctx context.Context) *http.Client {
	clientID := os.Getenv("OAUTH_CLIENT_ID")
	if clientID == "" {
		return http.DefaultClient
	}
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: os.Getenv("OAUTH_CLIENT_SECRET"),
		TokenURL:     os.Getenv("OAUTH_TOKEN_URL"),
		Scopes:       strings.Fields(os.Getenv("OAUTH_SCOPES")),
	}
	return cfg.Client(ctx)
}

func main() {
	endpoint := flag.String("endpoint", "http://localhost:8080", "service base URL")
	action := flag.String("action", "", "operation to invoke, e.g. Billing.CreateInvoice")
	flag.Parse()

	if *action == "" {
		log.Fatal("-action is required")
	}
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	params := url.Values{}
	for _, arg := range flag.Args() {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			log.Fatalf("argument %q is not key=value", arg)
		}
		params.Add(key, value)
	}

	ctx := context.Background()
	target := *endpoint + "/?Action=" + url.QueryEscape(*action)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target,
		strings.NewReader(params.Encode()))
	if err != nil {
		log.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if token := os.Getenv("TOKEN"); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := httpClient(ctx).Do(req)
	if err != nil {
		log.Fatal(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(resp.Status)
	if rid := resp.Header.Get("x-amzn-RequestId"); rid != "" {
		fmt.Println("request id:", rid)
	}
	fmt.Println(string(body))
	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}
