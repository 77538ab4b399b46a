package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gorilla/schema"

	"storefront-sync/internal/core/domain"
	"storefront-sync/internal/pkg/response"
)

var queryDecoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

// fail answers with the status for err and the message a store records
func fail(c *fiber.Ctx, err error, fallback string) error {
	return response.FromError(c, err, domain.Message(err, fallback))
}

// decodeQuery fills dst from the request query string
func decodeQuery(c *fiber.Ctx, dst any) error {
	values := make(map[string][]string)
	for k, v := range c.Queries() {
		values[k] = []string{utils.CopyString(v)}
	}
	return queryDecoder.Decode(dst, values)
}

// param returns a copy of a route parameter that may outlive the request
func param(c *fiber.Ctx, name string) string {
	return utils.CopyString(c.Params(name))
}
