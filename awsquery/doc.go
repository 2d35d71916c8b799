// Package awsquery is the AWS Query protocol adapter: it dispatches inbound
// HTTP requests to registered operation handles and maps every failure onto
// the protocol's fixed wire contract.
//
// An AWS Query call is an HTTP POST whose "Action" query parameter names the
// operation, e.g. POST /?Action=Billing.DescribeInvoice. The adapter owns
// three concerns:
//
//   - Dispatch: a Router resolves the Action against an immutable route
//     table that adapts its representation to the operation count (linear
//     scan for small services, indexed lookup for large ones).
//   - Composition: Layer wraps every registered handle with cross-cutting
//     behavior, and Boxed erases concrete handle types so the transport sees
//     one uniform routing.Route. Both produce new routers; nothing is
//     mutated after construction.
//   - Error mapping: routing failures (wrong method, unknown action) and
//     runtime failures (deserialization, validation, negotiation, internal)
//     each render the exact status, headers, and body the protocol
//     prescribes.
//
// # Basic Usage
//
// Collect operations into a router, layer middleware over it, box it, and
// hand it to the transport:
//
//	router := awsquery.NewRouter([]routing.Entry[routing.Service]{
//	    describeInvoice.Entry(),
//	    createInvoice.Entry(),
//	})
//	router = awsquery.Layer(router, middleware.Logging(logger))
//	http.ListenAndServe(":8080", awsquery.Handler(awsquery.Boxed(router)))
//
// Matching is a pure, lock-free read: a published router may serve any
// number of concurrent requests, and each match hands back an independent
// shared copy of the resolved handle.
package awsquery
