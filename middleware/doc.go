// Package middleware provides the net/http middlewares of the API pipeline.
// All of them have the mux.MiddlewareFunc shape:
//
//	r := mux.NewRouter()
//	r.Use(
//		middleware.Authenticate(keyFunc),
//		middleware.RequestLogger(svc),
//		middleware.UseAPIExceptionHandler(svc),
//		middleware.TrackPerformance(svc),
//	)
//	r.Handle("/products/{id}", middleware.Handle(getProduct))
package middleware
