package api

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"evalgo.org/microtosca/models"
)

// maxNameLength bounds node names accepted in paths.
const maxNameLength = 256

// ValidateContentType middleware ensures that requests with a body have the correct Content-Type
func ValidateContentType(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		method := c.Request().Method

		if method == "POST" || method == "PUT" || method == "PATCH" || method == "DELETE" {
			// Allow empty body for some requests
			if c.Request().ContentLength == 0 {
				return next(c)
			}

			contentType := c.Request().Header.Get("Content-Type")
			if !strings.HasPrefix(contentType, "application/json") {
				return BadRequestError(
					"Invalid Content-Type",
					"Content-Type must be 'application/json'. Got: "+contentType,
				)
			}
		}

		return next(c)
	}
}

// ValidateAcceptHeader middleware ensures that clients can accept JSON responses
func ValidateAcceptHeader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		accept := c.Request().Header.Get("Accept")

		// If no Accept header, assume */*
		if accept == "" {
			return next(c)
		}

		if !strings.Contains(accept, "application/json") &&
			!strings.Contains(accept, "*/*") &&
			!strings.Contains(accept, "application/*") &&
			!strings.Contains(accept, "application/yaml") {
			return BadRequestError(
				"Invalid Accept header",
				"API returns JSON or YAML. Accept header must include 'application/json', 'application/yaml' or '*/*'. Got: "+accept,
			)
		}

		return next(c)
	}
}

// ValidateNodeName middleware validates the :name path parameter
func ValidateNodeName(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.Param("name")

		if strings.TrimSpace(name) == "" {
			return BadRequestError("Invalid node name", "Name cannot be empty")
		}

		if len(name) > maxNameLength {
			return BadRequestError(
				"Invalid node name",
				"Name must not exceed "+strconv.Itoa(maxNameLength)+" characters",
			)
		}

		return next(c)
	}
}

// ValidateQueryParams middleware validates common query parameters
func ValidateQueryParams(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// limit and offset fall back to defaults in parsePagination

		if role := c.QueryParam("role"); role != "" {
			if _, err := models.ParseRole(role); err != nil {
				return BadRequestError("Invalid role parameter", err.Error())
			}
		}

		if dryRun := c.QueryParam("dry_run"); dryRun != "" {
			if _, err := strconv.ParseBool(dryRun); err != nil {
				return BadRequestError("Invalid dry_run parameter", "dry_run must be true or false. Got: "+dryRun)
			}
		}

		return next(c)
	}
}

// SecurityHeaders middleware adds security headers to responses
func SecurityHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("X-Content-Type-Options", "nosniff")
		c.Response().Header().Set("X-Frame-Options", "DENY")
		c.Response().Header().Set("X-XSS-Protection", "1; mode=block")
		c.Response().Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		return next(c)
	}
}
