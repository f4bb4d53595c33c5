package mysql

const upsertHostelSQL = `
INSERT INTO hostels
  (id, name, description, owner_id, broker_id, address, distance_km, lat, lon,
   university, rating, review_count, amenities, images)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name         = VALUES(name),
  description  = VALUES(description),
  owner_id     = VALUES(owner_id),
  broker_id    = VALUES(broker_id),
  address      = VALUES(address),
  distance_km  = VALUES(distance_km),
  lat          = VALUES(lat),
  lon          = VALUES(lon),
  university   = VALUES(university),
  rating       = VALUES(rating),
  review_count = VALUES(review_count),
  amenities    = VALUES(amenities),
  images       = VALUES(images)
`

const upsertRoomSQL = `
INSERT INTO rooms
  (id, hostel_id, position, type, price, status, capacity, amenities, images)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  hostel_id = VALUES(hostel_id),
  position  = VALUES(position),
  type      = VALUES(type),
  price     = VALUES(price),
  status    = VALUES(status),
  capacity  = VALUES(capacity),
  amenities = VALUES(amenities),
  images    = VALUES(images)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const hostelColumns = `
  h.id, h.name, h.description, h.owner_id, h.broker_id, h.address, h.distance_km,
  h.lat, h.lon, h.university, h.rating, h.review_count, h.amenities, h.images`

// catalog order is insertion order
const listHostelsSQL = `SELECT` + hostelColumns + `
FROM hostels h
ORDER BY h.created_at, h.id`

const getHostelSQL = `SELECT` + hostelColumns + `
FROM hostels h
WHERE h.id = ?`

const roomColumns = `r.id, r.hostel_id, r.type, r.price, r.status, r.capacity, r.amenities, r.images`

const listRoomsSQL = `SELECT ` + roomColumns + `
FROM rooms r
ORDER BY r.hostel_id, r.position, r.id`

const listRoomsByHostelSQL = `SELECT ` + roomColumns + `
FROM rooms r
WHERE r.hostel_id = ?
ORDER BY r.position, r.id`

const getRoomSQL = `SELECT ` + roomColumns + ` FROM rooms r WHERE r.id = ?`

const updateRoomStatusSQL = `UPDATE rooms SET status = ? WHERE id = ?`

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

const insertBookingSQL = `
INSERT INTO bookings (id, room_id, user_id, status, check_in, check_out, total_price, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

const bookingColumns = `b.id, b.room_id, b.user_id, b.status, b.check_in, b.check_out, b.total_price, b.created_at`

const getBookingSQL = `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = ?`

const listBookingsByUserSQL = `SELECT ` + bookingColumns + `
FROM bookings b
WHERE b.user_id = ?
ORDER BY b.created_at DESC, b.id`

const listBookingsByOwnerSQL = `SELECT ` + bookingColumns + `
FROM bookings b
JOIN rooms r   ON r.id = b.room_id
JOIN hostels h ON h.id = r.hostel_id
WHERE h.owner_id = ?
ORDER BY b.created_at DESC, b.id`

const listBookingsSQL = `SELECT ` + bookingColumns + `
FROM bookings b
ORDER BY b.created_at DESC, b.id`

const updateBookingStatusSQL = `UPDATE bookings SET status = ? WHERE id = ?`
