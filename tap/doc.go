// Package tap implements the Table Access Protocol: ADQL queries against a
// service's relational tables, either synchronously or as asynchronous UWS
// jobs.
//
// Synchronous queries round-trip in one request:
//
//	svc := tap.NewService("https://example.org/tap")
//	res, err := svc.RunSync(ctx, "SELECT TOP 10 * FROM ivoa.obscore")
//
// Asynchronous queries create a server-side job that is started, polled and
// harvested explicitly, surviving client timeouts for long-running queries:
//
//	job, err := svc.SubmitJob(ctx, query)
//	if err := job.Run(ctx); err != nil { ... }
//	if err := job.Wait(ctx); err != nil { ... }
//	res, err := job.FetchResult(ctx)
//	_ = job.Delete(ctx)
//
// Wait polls the job phase with growing intervals until the job reaches a
// terminal phase. A job that ends in the ERROR phase reports the service's
// VOTable error document as the wait error.
package tap
