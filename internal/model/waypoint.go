package model

// Waypoint is a place to visit on a given day of a trip. The id is assigned
// by the room on creation; clients insert waypoints optimistically under a
// provisional id until the room acknowledges.
//
// Within a (trip, day) pair the persisted Order values form a contiguous
// 1-based permutation. Renumbering is the editor's job before a save, not
// the store's.
type Waypoint struct {
	ID            string `json:"id"`
	TripID        int64  `json:"tripId"`
	PlaceName     string `json:"placeName"`
	PlaceLocation string `json:"placeLocation"`
	Order         int    `json:"order"`
	TripTime      string `json:"tripTime"`
	Day           int    `json:"day"`
}
