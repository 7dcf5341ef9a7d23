// Package http provides HTTP handlers and middleware for the reservation API.
//
// The router exposes the following endpoints:
//   - GET /bookings?date=YYYY-MM-DD: lists a date's bookings in creation order;
//     each entry carries its index, the position clients use to address it.
//   - POST /bookings: creates a booking. Body: {"date","name","party_size",
//     "start_time","end_time"|"duration_minutes","notes"}. The response pairs
//     the stored booking with the table the resolver assigned.
//   - GET /bookings/{date}/{index}, DELETE /bookings/{date}/{index}: fetch or
//     cancel the booking at a position within a date's collection.
//   - GET /bookings/{date}/{index}/edit, POST /bookings/{date}/{index}/edit:
//     fetch the current record or apply a partial update; omitted fields keep
//     their stored values.
//   - POST /bookings/move_to_table: reassigns a booking to a specific table.
//     Body: {"date","booking_index","new_table_id"}. Responds {"status":"ok"}.
//   - POST /bookings/swap_tables: exchanges the table assignments of two
//     bookings on one date. Body: {"date","booking_index_1","booking_index_2"}.
//   - GET /api/available-times?date=&party_size=&duration_minutes=: lists the
//     seating-grid start times with at least one free table for the party.
//   - GET /tables, POST /tables, PUT /tables/{id}: table roster endpoints
//     exchanging the `tableDTO` payload defined in table_handler.go.
//   - GET /healthz: liveness probe, optionally backed by a storage ping.
//   - GET /metrics: Prometheus metrics.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
