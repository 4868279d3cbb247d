package http

import (
	"net/http"
	"os"

	"github.com/ghodss/yaml"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/njprem/TravelAgency_BackEnd/internal/util"
)

const DefaultSwaggerSpec = "docs/swagger.yaml"

// RegisterSwagger serves the YAML spec as JSON and the UI under <group>/swagger.
func RegisterSwagger(g *echo.Group, specPath string, log logrus.FieldLogger) {
	if specPath == "" {
		specPath = DefaultSwaggerSpec
	}
	g.GET("/swagger/doc.json", func(c echo.Context) error {
		data, err := os.ReadFile(specPath)
		if err != nil {
			log.WithError(err).WithField("path", specPath).Error("load swagger spec")
			return c.JSON(http.StatusInternalServerError, util.Error("unable to load swagger spec"))
		}
		jsonSpec, err := yaml.YAMLToJSON(data)
		if err != nil {
			log.WithError(err).WithField("path", specPath).Error("convert swagger spec")
			return c.JSON(http.StatusInternalServerError, util.Error("unable to parse swagger spec"))
		}
		return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, jsonSpec)
	})
	g.GET("/swagger/*", echoSwagger.WrapHandler)
}
