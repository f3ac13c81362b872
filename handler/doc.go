// Package handler turns typed handler functions into http.HandlerFunc values.
//
// A handler receives a Context and a request struct filled by binders, and
// returns a Response:
//
//	type NewBookRequest struct {
//		Genre string `path:"genre"`
//		Title string `form:"title"`
//	}
//
//	create := handler.HandlerFunc[handler.Context, NewBookRequest](
//		func(ctx handler.Context, req NewBookRequest) handler.Response {
//			...
//			return handler.Redirect("/genre/" + req.Genre + "/")
//		},
//	)
//
//	r.Post("/genre/{genre}/new-book", handler.Wrap(create,
//		handler.WithBinders[handler.Context, NewBookRequest](
//			binder.Path(chi.URLParam),
//			binder.Form(),
//		),
//		handler.WithErrorHandler[handler.Context, NewBookRequest](errorHandler),
//	))
//
// Responses render full HTML pages from templ components. Requests sent by
// the DataStar client get the same component as an SSE element patch, and
// redirects become client-side redirects.
//
// Errors returned through Error, or raised while binding and rendering, go to
// the ErrorHandler. NewErrorHandler classifies them with the configured
// Classifiers, HTTPError and ValidationError, logs them and renders a JSON
// error, a toast or an error page depending on the request.
package handler
