package reports

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tinegaCollins/user-manager/internal/apperr"
	"github.com/tinegaCollins/user-manager/internal/users"
)

// UserRosterHandler streams a PDF of users matching the list filters.
func UserRosterHandler(svc *users.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.Export(c.UserContext(), users.FilterFromQuery(c), MaxRosterRows)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		b, err := BuildUserRosterPDF(items, now)
		if err != nil {
			return apperr.Internal(err)
		}

		c.Set(fiber.HeaderContentType, "application/pdf")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="users-%s.pdf"`, now.Format("20060102-150405")))
		return c.Send(b)
	}
}
