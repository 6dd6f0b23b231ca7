package handler

import (
	"context"
	"database/sql"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"hrdocs/internal/auth"
	"hrdocs/internal/http/middleware"
	"hrdocs/internal/repository"
	"hrdocs/internal/service"
)

const defaultPresignExpiry = 15 * time.Minute

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Handlers
// stay thin; document semantics live in the service.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService, auditRepo repository.AuditRepository, authn auth.Authenticator) {
	// Serve the OpenAPI spec and a Swagger UI page
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	guard := middleware.BasicAuth(authn)

	app.Get("/documents", guard, ListDocuments(docSvc))
	app.Post("/documents", guard, UploadDocument(docSvc))
	app.Get("/documents/:name", guard, DownloadDocument(docSvc))
	app.Get("/documents/:name/url", guard, PresignDocument(docSvc))
	app.Delete("/documents/:name", guard, DeleteDocument(docSvc))

	app.Get("/audit", guard, ListAuditEvents(auditRepo))
}

// HealthCheck reports readiness; it checks audit DB connectivity only, the
// object store is probed lazily per request.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness endpoint.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListDocuments returns every document currently in the container.
func ListDocuments(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := docSvc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// uploadResponse is the upload success body.
type uploadResponse struct {
	Success  bool   `json:"success"`
	FileName string `json:"file_name"`
	URL      string `json:"url"`
}

// UploadDocument stores a multipart upload (field name: file) under its
// original filename. Re-uploading the same name overwrites silently.
func UploadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		doc, err := docSvc.Upload(operatorCtx(c), fh.Filename, f, fh.Size, ct)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(uploadResponse{
			Success:  true,
			FileName: doc.Name,
			URL:      doc.URL,
		})
	}
}

// DownloadDocument streams the stored object bytes.
func DownloadDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, ok := documentName(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_NAME", "invalid document name")
		}

		rc, doc, err := docSvc.Download(c.UserContext(), name)
		if err != nil {
			return writeServiceError(c, err)
		}

		if doc.ContentType != "" {
			c.Set(fiber.HeaderContentType, doc.ContentType)
		}
		return c.SendStream(rc, int(doc.Size))
	}
}

// PresignDocument returns a time-limited download link for the object.
func PresignDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, ok := documentName(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_NAME", "invalid document name")
		}

		u, err := docSvc.PresignedURL(c.UserContext(), name, defaultPresignExpiry)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"url": u, "expires_in": defaultPresignExpiry.String()})
	}
}

// deleteResponse is the delete success body.
type deleteResponse struct {
	Success bool `json:"success"`
}

// DeleteDocument removes the object. Deleting an absent name still succeeds.
func DeleteDocument(docSvc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name, ok := documentName(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_NAME", "invalid document name")
		}

		if err := docSvc.Delete(operatorCtx(c), name); err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusOK).JSON(deleteResponse{Success: true})
	}
}

// ListAuditEvents returns the paginated admin audit trail.
func ListAuditEvents(auditRepo repository.AuditRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "20"))
		if err != nil || limit <= 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil || offset < 0 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := auditRepo.List(c.UserContext(), repository.PageQuery{Limit: limit, Offset: offset})
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(fiber.Map{"data": res.Items, "total": res.Total})
	}
}

// documentName extracts and unescapes the :name route parameter.
func documentName(c *fiber.Ctx) (string, bool) {
	raw := c.Params("name")
	name, err := url.PathUnescape(raw)
	if err != nil || name == "" {
		return "", false
	}
	return name, true
}

// operatorCtx attaches the authenticated actor and request id to the
// request context for audit recording.
func operatorCtx(c *fiber.Ctx) context.Context {
	return service.WithOperator(c.UserContext(), service.Operator{
		Actor:     middleware.ActorFromCtx(c),
		RequestID: requestIDFromCtx(c),
	})
}
