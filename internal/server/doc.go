// Package server exposes the content directory over HTTP as a UPnP media
// server endpoint.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # UPnP Surface
//
// Three handlers make up the device:
//   - [DeviceHandler] serves the device description and the ContentDirectory
//     service description (SCPD).
//   - [ControlHandler] accepts SOAP control requests and dispatches Browse,
//     Search, GetSystemUpdateID, GetSearchCapabilities, and
//     GetSortCapabilities to the directory service.
//   - [EventHandler] implements GENA eventing: SUBSCRIBE/UNSUBSCRIBE
//     bookkeeping plus NOTIFY delivery, acting as the broadcaster behind the
//     directory notifier's rate limiting.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
