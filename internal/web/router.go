package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/floorwarden/warden/internal/handlers"
)

func Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Public
	r.Get("/healthz", handlers.Health)
	r.Post("/tg/webhook", handlers.TelegramWebhook)
	r.Post("/token/", handlers.Token)
	r.Post("/token/refresh/", handlers.TokenRefresh)

	r.Group(func(ar chi.Router) {
		ar.Use(handlers.RequireAuth)

		// Any signed-in user
		ar.Get("/students/", handlers.StudentsList)
		ar.Get("/students/{id}/", handlers.StudentShow)
		ar.Get("/collections/", handlers.CollectionsList)
		ar.Get("/collections/{id}/", handlers.CollectionShow)
		ar.Get("/attendance-sessions/", handlers.SessionsList)
		ar.Get("/attendance-sessions/{id}/", handlers.SessionShow)
		ar.Get("/requests/", handlers.RequestsList)
		ar.Get("/announcements/", handlers.AnnouncementsList)
		ar.Get("/profile/", handlers.ProfileShow)
		ar.Patch("/profile/update/", handlers.ProfileUpdate)
		ar.Post("/change-password/", handlers.ChangePassword)

		// Floor leader
		ar.Group(func(lr chi.Router) {
			lr.Use(handlers.RequireLeader)

			// Roster
			lr.Post("/students/", handlers.StudentCreate)
			lr.Put("/students/{id}/", handlers.StudentUpdate)
			lr.Delete("/students/{id}/", handlers.StudentDelete)
			lr.Post("/students/import/", handlers.StudentsImport)
			lr.Get("/students/export.xlsx", handlers.StudentsExport)

			// Dues
			lr.Post("/collections/create/", handlers.CollectionCreate)
			lr.Get("/collections/{id}/export.csv", handlers.CollectionCSV)
			lr.Patch("/collection-records/{id}/bulk-update/", handlers.PaymentsBulkUpdate)
			lr.Patch("/payments/{id}/toggle/", handlers.PaymentToggle)

			// Attendance
			lr.Post("/attendance-sessions/create/", handlers.SessionCreate)
			lr.Get("/attendance-sessions/{id}/qr.png", handlers.SessionQR)
			lr.Get("/attendance-sessions/{id}/export.csv", handlers.SessionCSV)
			lr.Patch("/attendance-records/{id}/bulk-update/", handlers.AttendanceBulkUpdate)

			lr.Put("/requests/{id}/", handlers.RequestUpdate)
			lr.Post("/announcements/", handlers.AnnouncementCreate)

			lr.Get("/floor-leaders/", handlers.FloorLeadersList)
			lr.Post("/floor-leaders/", handlers.FloorLeaderCreate)
			lr.Get("/statistic-for-leader/", handlers.LeaderStatistics)

			// Duty rotation
			lr.Get("/duty/", handlers.DutyList)
			lr.Post("/duty/", handlers.DutyAssign)
			lr.Patch("/duty/{id}/", handlers.DutyMark)
		})

		// Student
		ar.Group(func(sr chi.Router) {
			sr.Use(handlers.RequireStudent)

			sr.Post("/requests/", handlers.RequestCreate)
			sr.Post("/announcements/{id}/read/", handlers.AnnouncementRead)
			sr.Post("/attendance-sessions/{id}/checkin/", handlers.SessionCheckin)
			sr.Get("/statistic-for-student/", handlers.StudentStatistics)
			sr.Post("/account/linkcode/", handlers.AccountGenerateLinkCode)
			sr.Post("/account/unlink-telegram/", handlers.AccountUnlinkTelegram)
		})
	})

	return r
}
