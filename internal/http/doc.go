// Package http provides HTTP handlers and middleware for the reservations API.
//
// The router exposes the following endpoints:
//   - POST /users: registers a guest account. Body: {"email","password","full_name"}.
//   - POST /sessions: authenticates a guest and issues a session token. Body:
//     {"email","password"}. Response: {"token","expires_at","user"}.
//   - DELETE /sessions: revokes the current session token extracted from the
//     Authorization header or the X-Session-Token header. Returns 204 No Content.
//   - GET /hotels, GET /hotels/{id}, GET /room-categories, GET /rooms/{id}:
//     read-only catalog endpoints exchanging the DTOs defined in catalog_handler.go.
//   - GET /rooms/search: availability search. Query parameters: check_in and
//     check_out (YYYY-MM-DD, required), guests, city, category, min_price,
//     max_price. Returns the rooms free for the whole stay window.
//   - POST /bookings, GET /bookings, POST /bookings/{id}/payment,
//     DELETE /bookings/{id}: booking lifecycle endpoints exchanging the DTOs
//     defined in booking_handler.go. Payment settlement returns 402 when the
//     provider declines, leaving the booking retryable.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
