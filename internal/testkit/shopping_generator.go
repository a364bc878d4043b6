package testkit

import (
	"fmt"
	"math"
	"math/rand"

	"gotabstat/domain/table"
)

// ShoppingGeneratorConfig configures the shopping order generator
type ShoppingGeneratorConfig struct {
	OrderCount     int     `json:"order_count"`
	ReturnRateBase float64 `json:"return_rate_base"`
	OutlierRate    float64 `json:"outlier_rate"`
	MissingRate    float64 `json:"missing_rate"`
	DailyGrowth    float64 `json:"daily_growth"`
	Seed           int64   `json:"seed"`
}

// DefaultShoppingConfig returns sensible defaults for order generation
func DefaultShoppingConfig() ShoppingGeneratorConfig {
	return ShoppingGeneratorConfig{
		OrderCount:     200,
		ReturnRateBase: 0.08,
		OutlierRate:    0.02,
		MissingRate:    0.1,
		DailyGrowth:    1.5,
		Seed:           42,
	}
}

// Order is one generated row
type Order struct {
	OrderID    string
	Day        int
	Visitors   float64
	Units      float64
	UnitPrice  float64
	Revenue    float64
	Discount   float64
	RiskScore  *float64
	Returned   bool
	Region     string
	NoiseIndex float64
}

// ShoppingColumns is the header of the generated sheet
var ShoppingColumns = []string{
	"order_id", "day", "visitors", "units", "unit_price", "revenue",
	"discount", "risk_score", "returned", "region", "noise_index",
}

// ShoppingDataGenerator generates e-commerce order rows with known
// structure: revenue follows units, visitors grow with day, a small share of
// orders are bulk outliers and risk_score is sometimes missing.
type ShoppingDataGenerator struct {
	config ShoppingGeneratorConfig
	rng    *rand.Rand
}

// NewShoppingDataGenerator creates a new shopping data generator
func NewShoppingDataGenerator(config ShoppingGeneratorConfig) *ShoppingDataGenerator {
	return &ShoppingDataGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateOrders generates the configured number of orders in day order
func (g *ShoppingDataGenerator) GenerateOrders() []Order {
	orders := make([]Order, 0, g.config.OrderCount)
	for i := 0; i < g.config.OrderCount; i++ {
		orders = append(orders, g.order(i))
	}
	return orders
}

func (g *ShoppingDataGenerator) order(i int) Order {
	day := i + 1
	units := math.Max(1, math.Round(5+g.rng.NormFloat64()*1.5))
	if g.rng.Float64() < g.config.OutlierRate {
		units *= 25 // bulk order
	}
	price := 20 + g.rng.Float64()*5
	discount := math.Round(g.rng.Float64()*15*100) / 100

	o := Order{
		OrderID:    fmt.Sprintf("order_%04d", day),
		Day:        day,
		Visitors:   math.Round(100 + g.config.DailyGrowth*float64(day) + g.rng.NormFloat64()*3),
		Units:      units,
		UnitPrice:  math.Round(price*100) / 100,
		Revenue:    math.Round(units*price*(1-discount/100)*100) / 100,
		Discount:   discount,
		Returned:   g.rng.Float64() < g.config.ReturnRateBase,
		Region:     g.randomRegion(),
		NoiseIndex: g.rng.Float64() * 100,
	}
	if g.rng.Float64() >= g.config.MissingRate {
		risk := math.Round(g.rng.Float64()*1000) / 1000
		o.RiskScore = &risk
	}
	return o
}

func (g *ShoppingDataGenerator) randomRegion() string {
	regions := []string{"north", "south", "east", "west"}
	return regions[g.rng.Intn(len(regions))]
}

// Sheet renders the orders as a fixture worksheet
func (g *ShoppingDataGenerator) Sheet(name string, orders []Order) Sheet {
	rows := make([][]interface{}, 0, len(orders)+1)
	header := make([]interface{}, len(ShoppingColumns))
	for i, h := range ShoppingColumns {
		header[i] = h
	}
	rows = append(rows, header)

	for _, o := range orders {
		var risk interface{}
		if o.RiskScore != nil {
			risk = *o.RiskScore
		}
		rows = append(rows, []interface{}{
			o.OrderID, o.Day, o.Visitors, o.Units, o.UnitPrice, o.Revenue,
			o.Discount, risk, o.Returned, o.Region, o.NoiseIndex,
		})
	}
	return Sheet{Name: name, Rows: rows}
}

// Table builds the orders directly as an in-memory table
func (g *ShoppingDataGenerator) Table(orders []Order) (*table.Table, error) {
	rows := make([][]table.Cell, len(orders))
	for i, o := range orders {
		risk := table.Missing()
		if o.RiskScore != nil {
			risk = table.Number(*o.RiskScore)
		}
		rows[i] = []table.Cell{
			table.Text(o.OrderID), table.Number(float64(o.Day)), table.Number(o.Visitors),
			table.Number(o.Units), table.Number(o.UnitPrice), table.Number(o.Revenue),
			table.Number(o.Discount), risk, table.Bool(o.Returned), table.Text(o.Region),
			table.Number(o.NoiseIndex),
		}
	}
	return table.FromRows(table.Source{File: "shopping.xlsx", Sheet: "Orders"}, ShoppingColumns, rows)
}
