package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/flightinfo/internal/domain"
	"github.com/Domenick1991/flightinfo/internal/flightjson"
	"github.com/Domenick1991/flightinfo/internal/registry"
	"github.com/Domenick1991/flightinfo/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
	codec   *flightjson.Codec
}

// flightsResponse wraps query results. Warning carries the diagnostic of a
// query whose time arguments could not be parsed.
type flightsResponse struct {
	Flights []flightjson.Record `json:"flights"`
	Warning string              `json:"warning,omitempty"`
}

const maxWindowHours = float64(math.MaxInt64 / int64(time.Hour))

type countResponse struct {
	Count int `json:"count"`
}

func NewFlightHandler(service flights.FlightUseCase, codec *flightjson.Codec) *FlightHandler {
	return &FlightHandler{service: service, codec: codec}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.add)
	router.GET("/delayed", h.delayed)
	router.GET("/airline/:airline", h.byAirline)
	router.GET("/date/:date", h.byDepartureDate)
	router.GET("/range", h.byTimeRangeAndDestination)
	router.GET("/arrived", h.arrivedInWindow)
	router.POST("/load", h.load)
	router.POST("/save", h.save)
	router.GET("/:number", h.get)
	router.DELETE("/:number", h.remove)
}

func (h *FlightHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	respondFlights(c, list, nil)
}

func (h *FlightHandler) get(c *gin.Context) {
	flight, err := h.service.Get(c.Request.Context(), c.Param("number"))
	if err != nil {
		if errors.Is(err, flights.ErrFlightNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, flightjson.FromDomain(*flight))
}

func (h *FlightHandler) add(c *gin.Context) {
	var record flightjson.Record
	if err := c.ShouldBindJSON(&record); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	flight, err := h.codec.ToDomain(record)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.Add(c.Request.Context(), flight); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, flightjson.FromDomain(flight))
}

func (h *FlightHandler) remove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), c.Param("number")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FlightHandler) byAirline(c *gin.Context) {
	respondFlights(c, h.service.ByAirline(c.Request.Context(), c.Param("airline")), nil)
}

func (h *FlightHandler) delayed(c *gin.Context) {
	respondFlights(c, h.service.Delayed(c.Request.Context()), nil)
}

func (h *FlightHandler) byDepartureDate(c *gin.Context) {
	respondFlights(c, h.service.ByDepartureDate(c.Request.Context(), c.Param("date")), nil)
}

func (h *FlightHandler) byTimeRangeAndDestination(c *gin.Context) {
	list, err := h.service.ByTimeRangeAndDestination(
		c.Request.Context(),
		c.Query("start"),
		c.Query("end"),
		c.Query("destination"),
	)
	respondFlights(c, list, err)
}

func (h *FlightHandler) arrivedInWindow(c *gin.Context) {
	hours, err := parseWindowHours(c.DefaultQuery("hours", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hours"})
		return
	}
	list, err := h.service.ArrivedInWindow(c.Request.Context(), c.Query("end"), hours)
	respondFlights(c, list, err)
}

func (h *FlightHandler) load(c *gin.Context) {
	n, err := h.service.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, countResponse{Count: n})
}

func (h *FlightHandler) save(c *gin.Context) {
	n, err := h.service.Save(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, countResponse{Count: n})
}

// parseWindowHours rejects NaN, infinities and windows too wide for a
// time.Duration.
func parseWindowHours(value string) (float64, error) {
	hours, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(hours) || math.Abs(hours) > maxWindowHours {
		return 0, fmt.Errorf("hours out of range: %s", value)
	}
	return hours, nil
}

// respondFlights answers 200 even for an invalid date: the query result is
// empty and the diagnostic travels as a warning.
func respondFlights(c *gin.Context, list []domain.Flight, err error) {
	resp := flightsResponse{Flights: flightjson.FromDomainList(list)}
	if err != nil {
		if !errors.Is(err, registry.ErrInvalidDateFormat) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp.Warning = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
