// A minimal AWS Query style RPC service: two operations, structured
// logging and panic recovery.
//
// Try it:
//
//	curl -X POST 'http://localhost:8080/?Action=Billing.CreateInvoice' \
//	    -d 'Customer=acme&Amount=125.50'
//	curl -X POST 'http://localhost:8080/?Action=Billing.DescribeInvoice' \
//	    -d 'InvoiceId=inv-1'
package main

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mnehpets/queryserve/awsquery"
	"github.com/mnehpets/queryserve/middleware"
	"github.com/mnehpets/queryserve/operation"
	"github.com/mnehpets/queryserve/routing"
)

// CreateInvoiceInput is decoded from the form-encoded request body.
type CreateInvoiceInput struct {
	Customer string  `query:"Customer" validate:"required"`
	Amount   float64 `query:"Amount" validate:"gt=0"`
}

// CreateInvoiceOutput is rendered inside the XML result element.
type CreateInvoiceOutput struct {
	InvoiceID string  `xml:"InvoiceId"`
	Customer  string  `xml:"Customer"`
	Amount    float64 `xml:"Amount"`
}

type DescribeInvoiceInput struct {
	InvoiceID string `query:"InvoiceId" validate:"required"`
}

type DescribeInvoiceOutput struct {
	InvoiceID string  `xml:"InvoiceId"`
	Customer  string  `xml:"Customer"`
	Amount    float64 `xml:"Amount"`
}

// invoiceStore is an in-memory stand-in for a real backend.
type invoiceStore struct {
	mu       sync.Mutex
	invoices map[string]CreateInvoiceOutput
}

func (s *invoiceStore) create(_ context.Context, in CreateInvoiceInput) (CreateInvoiceOutput, error) {
	out := CreateInvoiceOutput{
		InvoiceID: uuid.NewString(),
		Customer:  in.Customer,
		Amount:    in.Amount,
	}
	s.mu.Lock()
	s.invoices[out.InvoiceID] = out
	s.mu.Unlock()
	return out, nil
}

func (s *invoiceStore) describe(_ context.Context, in DescribeInvoiceInput) (DescribeInvoiceOutput, error) {
	s.mu.Lock()
	inv, ok := s.invoices[in.InvoiceID]
	s.mu.Unlock()
	if !ok {
		return DescribeInvoiceOutput{}, &operation.ServiceError{
			Code:    "InvoiceNotFound",
			Status:  http.StatusNotFound,
			Message: "no invoice with id " + in.InvoiceID,
		}
	}
	return DescribeInvoiceOutput(inv), nil
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	store := &invoiceStore{invoices: make(map[string]CreateInvoiceOutput)}

	rt := awsquery.NewRouter([]routing.Entry[routing.Service]{
		operation.New("Billing.CreateInvoice", store.create).Entry(),
		operation.New("Billing.DescribeInvoice", store.describe).Entry(),
	})

	layered := awsquery.Layer(rt, middleware.Chained(
		middleware.Recover(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
	))

	logger.Info("listening", zap.String("addr", ":8080"), zap.Strings("actions", rt.Actions()))
	if err := http.ListenAndServe(":8080", awsquery.Handler(awsquery.Boxed(layered))); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
