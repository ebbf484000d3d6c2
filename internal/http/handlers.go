package http

import (
	"io"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"meterdesk/internal/auth"
	"meterdesk/internal/domain"
	"meterdesk/internal/report"
	"meterdesk/internal/repository"
	"meterdesk/internal/service"
)

const dateLayout = "2006-01-02"

func Register(app *fiber.App, svcs *service.Services, jwtSecret string, tokenTTL time.Duration) {
	app.Post("/login", func(c *fiber.Ctx) error {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		u, err := svcs.Users.Authenticate(c.Context(), body.Username, body.Password)
		if err != nil {
			// Uniform 401 regardless of which check failed.
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
		}
		token, err := auth.IssueToken(jwtSecret, tokenTTL, u)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"token": token, "user": u})
	})

	g := app.Group("/", RequireAuth(jwtSecret))

	registerMeters(g, svcs)
	registerTasks(g, svcs)
	registerUsers(g, svcs)
	registerReadings(g, svcs)
	registerReports(g, svcs)
}

func registerMeters(g fiber.Router, svcs *service.Services) {
	g.Get("meters", func(c *fiber.Ctx) error {
		items, err := svcs.Meters.List(c.Context(), actorFrom(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(items)
	})
	g.Get("meters/assignable", func(c *fiber.Ctx) error {
		items, err := svcs.Tasks.ListAssignable(c.Context(), actorFrom(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(items)
	})
	g.Get("meters/:id", func(c *fiber.Ctx) error {
		m, err := svcs.Meters.Get(c.Context(), actorFrom(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(m)
	})
	g.Post("meters", func(c *fiber.Ctx) error {
		var m domain.Meter
		if err := c.BodyParser(&m); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		created, err := svcs.Meters.Create(c.Context(), actorFrom(c), &m)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})
	g.Post("meters/import", func(c *fiber.Ctx) error {
		var body struct {
			Meters []domain.Meter `json:"meters"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		count, err := svcs.Meters.BulkImport(c.Context(), actorFrom(c), body.Meters)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"imported": count})
	})
	g.Put("meters/:id", func(c *fiber.Ctx) error {
		var m domain.Meter
		if err := c.BodyParser(&m); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		m.ID = c.Params("id")
		if err := svcs.Meters.Update(c.Context(), actorFrom(c), &m); err != nil {
			return fail(c, err)
		}
		return c.JSON(m)
	})
	g.Delete("meters/:id", func(c *fiber.Ctx) error {
		if err := svcs.Meters.Delete(c.Context(), actorFrom(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func registerTasks(g fiber.Router, svcs *service.Services) {
	g.Get("tasks", func(c *fiber.Ctx) error {
		items, err := svcs.Tasks.List(c.Context(), actorFrom(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(items)
	})
	g.Get("tasks/:id", func(c *fiber.Ctx) error {
		t, err := svcs.Tasks.Get(c.Context(), actorFrom(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	})
	g.Post("tasks", func(c *fiber.Ctx) error {
		var body struct {
			MeterIDs       []string `json:"meter_ids"`
			AssigneeUserID string   `json:"assignee_user_id"`
			TaskDate       string   `json:"task_date"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		taskDate, err := time.Parse(dateLayout, body.TaskDate)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "task_date must be YYYY-MM-DD"})
		}
		created, err := svcs.Tasks.CreateBatch(c.Context(), actorFrom(c), body.MeterIDs, body.AssigneeUserID, taskDate)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})
	g.Post("tasks/:id/photo", func(c *fiber.Ctx) error {
		fh, err := c.FormFile("photo")
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "photo file is required"})
		}
		f, err := fh.Open()
		if err != nil {
			return fail(c, err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return fail(c, err)
		}
		key, err := svcs.Tasks.UploadPhoto(c.Context(), actorFrom(c), c.Params("id"),
			fh.Filename, data, fh.Header.Get("Content-Type"))
		if err != nil {
			// Photo capture is best-effort for the workflow, but the
			// upload endpoint itself reports its own failures.
			log.Warn().Err(err).Str("task", c.Params("id")).Msg("photo upload failed")
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"photo_key": key})
	})
	g.Post("tasks/:id/complete", func(c *fiber.Ctx) error {
		var body struct {
			MeterReading float64  `json:"meter_reading"`
			PhotoKey     *string  `json:"photo_key"`
			LocationLat  *float64 `json:"location_lat"`
			LocationLng  *float64 `json:"location_lng"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		t, err := svcs.Tasks.Complete(c.Context(), actorFrom(c), c.Params("id"), service.Completion{
			MeterReading: body.MeterReading,
			PhotoKey:     body.PhotoKey,
			LocationLat:  body.LocationLat,
			LocationLng:  body.LocationLng,
		})
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	})
	g.Get("tasks/:id/photo-url", func(c *fiber.Ctx) error {
		url, err := svcs.Tasks.PhotoURL(c.Context(), actorFrom(c), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"url": url})
	})
	g.Put("tasks/:id", func(c *fiber.Ctx) error {
		var body struct {
			AssignedUserID *string  `json:"assigned_user_id"`
			TaskDate       *string  `json:"task_date"`
			Status         *string  `json:"status"`
			MeterReading   *float64 `json:"meter_reading"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		u := repository.TaskUpdate{
			AssignedUserID: body.AssignedUserID,
			MeterReading:   body.MeterReading,
		}
		if body.TaskDate != nil {
			d, err := time.Parse(dateLayout, *body.TaskDate)
			if err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "task_date must be YYYY-MM-DD"})
			}
			u.TaskDate = &d
		}
		if body.Status != nil {
			st := domain.TaskStatus(*body.Status)
			u.Status = &st
		}
		t, err := svcs.Tasks.Edit(c.Context(), actorFrom(c), c.Params("id"), u)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(t)
	})
	g.Delete("tasks/:id", func(c *fiber.Ctx) error {
		if err := svcs.Tasks.Delete(c.Context(), actorFrom(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func registerUsers(g fiber.Router, svcs *service.Services) {
	g.Get("users", func(c *fiber.Ctx) error {
		items, err := svcs.Users.List(c.Context(), actorFrom(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(items)
	})
	g.Post("users", func(c *fiber.Ctx) error {
		var body struct {
			Username   string `json:"username"`
			Password   string `json:"password"`
			Role       string `json:"role"`
			FullName   string `json:"full_name"`
			Department string `json:"department"`
			Position   string `json:"position"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		u, err := svcs.Users.Create(c.Context(), actorFrom(c), service.NewUser{
			Username:   body.Username,
			Password:   body.Password,
			Role:       domain.Role(body.Role),
			FullName:   body.FullName,
			Department: body.Department,
			Position:   body.Position,
		})
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(u)
	})
	g.Put("users/:id", func(c *fiber.Ctx) error {
		var body struct {
			Password   *string `json:"password"`
			Role       *string `json:"role"`
			FullName   *string `json:"full_name"`
			Department *string `json:"department"`
			Position   *string `json:"position"`
			IsActive   *bool   `json:"is_active"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		edit := service.UserEdit{
			Password:   body.Password,
			FullName:   body.FullName,
			Department: body.Department,
			Position:   body.Position,
			IsActive:   body.IsActive,
		}
		if body.Role != nil {
			role := domain.Role(*body.Role)
			edit.Role = &role
		}
		u, err := svcs.Users.Update(c.Context(), actorFrom(c), c.Params("id"), edit)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(u)
	})
	g.Delete("users/:id", func(c *fiber.Ctx) error {
		if err := svcs.Users.Delete(c.Context(), actorFrom(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func registerReadings(g fiber.Router, svcs *service.Services) {
	g.Get("subscriber-readings", func(c *fiber.Ctx) error {
		items, err := svcs.Readings.ListSubscriberReadings(c.Context(), actorFrom(c))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(items)
	})
	g.Post("subscriber-readings", func(c *fiber.Ctx) error {
		var in domain.SubscriberReading
		if err := c.BodyParser(&in); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		created, err := svcs.Readings.CreateSubscriberReading(c.Context(), actorFrom(c), &in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})
	g.Put("subscriber-readings/:id", func(c *fiber.Ctx) error {
		var in domain.SubscriberReading
		if err := c.BodyParser(&in); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		in.ID = c.Params("id")
		if err := svcs.Readings.UpdateSubscriberReading(c.Context(), actorFrom(c), &in); err != nil {
			return fail(c, err)
		}
		return c.JSON(in)
	})
	g.Delete("subscriber-readings/:id", func(c *fiber.Ctx) error {
		if err := svcs.Readings.DeleteSubscriberReading(c.Context(), actorFrom(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	g.Get("feeder-readings", func(c *fiber.Ctx) error {
		items, err := svcs.Readings.ListFeederReadings(c.Context(), actorFrom(c), c.Query("feeder"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(items)
	})
	g.Post("feeder-readings", func(c *fiber.Ctx) error {
		var in domain.FeederReading
		if err := c.BodyParser(&in); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		created, err := svcs.Readings.CreateFeederReading(c.Context(), actorFrom(c), &in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})
	g.Put("feeder-readings/:id", func(c *fiber.Ctx) error {
		var in domain.FeederReading
		if err := c.BodyParser(&in); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		in.ID = c.Params("id")
		if err := svcs.Readings.UpdateFeederReading(c.Context(), actorFrom(c), &in); err != nil {
			return fail(c, err)
		}
		return c.JSON(in)
	})
	g.Delete("feeder-readings/:id", func(c *fiber.Ctx) error {
		if err := svcs.Readings.DeleteFeederReading(c.Context(), actorFrom(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	g.Get("records", func(c *fiber.Ctx) error {
		items, err := svcs.Readings.ListReceiptRecords(c.Context(), actorFrom(c), c.Query("registry"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(items)
	})
	g.Post("records", func(c *fiber.Ctx) error {
		var in domain.ReceiptRecord
		if err := c.BodyParser(&in); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		created, err := svcs.Readings.CreateReceiptRecord(c.Context(), actorFrom(c), &in)
		if err != nil {
			return fail(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	})
	g.Put("records/:id", func(c *fiber.Ctx) error {
		var in domain.ReceiptRecord
		if err := c.BodyParser(&in); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}
		in.ID = c.Params("id")
		if err := svcs.Readings.UpdateReceiptRecord(c.Context(), actorFrom(c), &in); err != nil {
			return fail(c, err)
		}
		return c.JSON(in)
	})
	g.Delete("records/:id", func(c *fiber.Ctx) error {
		if err := svcs.Readings.DeleteReceiptRecord(c.Context(), actorFrom(c), c.Params("id")); err != nil {
			return fail(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func registerReports(g fiber.Router, svcs *service.Services) {
	sendCSV := func(c *fiber.Ctx, name string, data []byte) error {
		c.Set("Content-Type", "text/csv; charset=utf-8")
		c.Set("Content-Disposition", `attachment; filename="`+name+`"`)
		return c.Send(data)
	}

	g.Get("reports/tasks.csv", func(c *fiber.Ctx) error {
		tasks, meters, users, err := svcs.Tasks.ExportRows(c.Context(), actorFrom(c))
		if err != nil {
			return fail(c, err)
		}
		data, err := report.Tasks(tasks, meters, users)
		if err != nil {
			return fail(c, err)
		}
		return sendCSV(c, "tasks.csv", data)
	})
	g.Get("reports/subscribers.csv", func(c *fiber.Ctx) error {
		readings, err := svcs.Readings.ListSubscriberReadings(c.Context(), actorFrom(c))
		if err != nil {
			return fail(c, err)
		}
		data, err := report.Subscribers(readings)
		if err != nil {
			return fail(c, err)
		}
		return sendCSV(c, "subscribers.csv", data)
	})
	g.Get("reports/feeders.csv", func(c *fiber.Ctx) error {
		readings, err := svcs.Readings.ListFeederReadings(c.Context(), actorFrom(c), "")
		if err != nil {
			return fail(c, err)
		}
		data, err := report.Feeders(readings)
		if err != nil {
			return fail(c, err)
		}
		return sendCSV(c, "feeders.csv", data)
	})
}
