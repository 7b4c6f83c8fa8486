package api

import (
	"encoding/json"
	"fmt"
	"strconv"

	domain "github.com/example/task-server/domain/task"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)

	tasks := app.Group("/tasks")
	tasks.Post("/", m.createTask)
	tasks.Get("/", m.listTasks)
	tasks.Get("/:id", m.getTask)
	tasks.Put("/:id", m.updateTask)
	tasks.Delete("/:id", m.deleteTask)

	app.Get("/activity", m.recentActivity)

	app.Get("/tools", m.listTools)
	app.Post("/tools/:name", m.callTool)
	app.All("/mcp", m.mcpHandler())
}

func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module": "api",
			"addr":   m.server.Addr,
		},
	})
}

// createTask handles POST /tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	var d domain.Draft
	if err := decodeBody(c, &d); err != nil {
		return writeError(c, err)
	}

	t, err := m.tasks.CreateTask(c.Context(), d)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(MutationResponse{
		TaskID:  t.ID,
		Message: fmt.Sprintf("Task created successfully with ID: %s", t.ID),
		Task:    t,
	})
}

// getTask handles GET /tasks/:id.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	t, err := m.tasks.GetTask(c.Context(), utils.CopyString(c.Params("id")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(t)
}

// updateTask handles PUT /tasks/:id. Only the fields present in the body change.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	taskID := utils.CopyString(c.Params("id"))

	var p domain.Patch
	if err := decodeBody(c, &p); err != nil {
		return writeError(c, err)
	}

	t, err := m.tasks.UpdateTask(c.Context(), taskID, p)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(MutationResponse{
		TaskID:  taskID,
		Message: "Task updated successfully",
		Task:    t,
	})
}

// deleteTask handles DELETE /tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	taskID := utils.CopyString(c.Params("id"))

	if err := m.tasks.DeleteTask(c.Context(), taskID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(DeleteResponse{
		TaskID:  taskID,
		Deleted: true,
		Message: fmt.Sprintf("Task deleted successfully: %s", taskID),
	})
}

// listTasks handles GET /tasks?status=&limit=.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	limit, err := queryLimit(c)
	if err != nil {
		return writeError(c, err)
	}

	q := domain.Query{Limit: limit}
	var filter any = "none"
	if status := c.Query("status"); status != "" {
		s := domain.Status(utils.CopyString(status))
		q.Status = domain.Some(s)
		filter = map[string]domain.Status{"status": s}
	}

	page, err := m.tasks.ListTasks(c.Context(), q)
	if err != nil {
		return writeError(c, err)
	}

	tasks := page.Tasks
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return c.JSON(ListTasksResponse{
		Tasks:  tasks,
		Count:  page.Count,
		Limit:  page.Limit,
		Filter: filter,
	})
}

// recentActivity handles GET /activity?limit=.
func (m *APIModule) recentActivity(c *fiber.Ctx) error {
	limit, err := queryLimit(c)
	if err != nil {
		return writeError(c, err)
	}

	resp, err := m.activity.Recent(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "activity_failed",
			Message: err.Error(),
		})
	}
	return c.JSON(ActivityResponse{Entries: resp.Entries, Count: resp.Count})
}

// listTools handles GET /tools.
func (m *APIModule) listTools(c *fiber.Ctx) error {
	return c.JSON(ToolsResponse{Tools: m.registry.Tools()})
}

// callTool handles POST /tools/:name. The response is the tool outcome, so a
// failed call still answers 200 with success false.
func (m *APIModule) callTool(c *fiber.Ctx) error {
	name := utils.CopyString(c.Params("name"))
	args := append(json.RawMessage(nil), c.Body()...)

	result := m.registry.Call(c.Context(), name, args)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return c.SendString(result.Text)
}

// decodeBody reads a JSON body into v. An empty body is an empty object.
func decodeBody(c *fiber.Ctx, v any) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &domain.ValidationError{Field: "body", Reason: fmt.Sprintf("invalid request body: %v", err)}
	}
	return nil
}

func queryLimit(c *fiber.Ctx) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ValidationError{Field: "limit", Reason: "must be an integer"}
	}
	return limit, nil
}

func writeError(c *fiber.Ctx, err error) error {
	kind := domain.KindOf(err)

	code := fiber.StatusInternalServerError
	switch kind {
	case domain.KindValidation:
		code = fiber.StatusBadRequest
	case domain.KindNotFound:
		code = fiber.StatusNotFound
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   string(kind),
		Message: err.Error(),
	})
}
