package events

import "github.com/floorwarden/warden/internal/models"

// OnAnnouncement is called after an announcement is created.
// services will call this if it's set.
var OnAnnouncement func(a models.Announcement)

// OnRequestStatus is called after a leader changes a request's status.
var OnRequestStatus func(r models.Request)
