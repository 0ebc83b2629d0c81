package web

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vbonduro/poseidon/internal/domain"
	"github.com/vbonduro/poseidon/internal/validation"
)

const dateLayout = "2006-01-02"

const (
	msgNotNumber = "must be a number"
	msgNotDate   = "must be a date (YYYY-MM-DD)"

	msgCurveIDMissing = "must not be null"
)

// field describes one form input. Listed fields also appear as list columns.
type field struct {
	Name    string
	Label   string
	Input   string
	Options []string
	Listed  bool
}

// entity binds a record type to its URL prefix, form layout and the
// conversions between the record and submitted form values.
type entity[T any] struct {
	name   string
	title  string
	fields []field
	parse  func(url.Values) (*T, validation.Errors)
	toForm func(*T) url.Values
}

// formReader converts submitted values, collecting a field error for each
// value that cannot be converted.
type formReader struct {
	values url.Values
	errs   validation.Errors
}

func newFormReader(values url.Values) *formReader {
	return &formReader{values: values, errs: validation.Errors{}}
}

func (f *formReader) str(name string) string {
	return strings.TrimSpace(f.values.Get(name))
}

func (f *formReader) float(name string) float64 {
	s := f.str(name)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		f.errs.Add(name, msgNotNumber)
		return 0
	}
	return v
}

func (f *formReader) int(name string) int {
	s := f.str(name)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		f.errs.Add(name, msgNotNumber)
		return 0
	}
	return v
}

func (f *formReader) date(name string) *time.Time {
	s := f.str(name)
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		f.errs.Add(name, msgNotDate)
		return nil
	}
	return &t
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

var bidEntity = entity[domain.BidList]{
	name:  "bid",
	title: "Bid",
	fields: []field{
		{Name: "account", Label: "Account", Input: "text", Listed: true},
		{Name: "type", Label: "Type", Input: "text", Listed: true},
		{Name: "bidQuantity", Label: "Bid Quantity", Input: "number", Listed: true},
		{Name: "askQuantity", Label: "Ask Quantity", Input: "number"},
		{Name: "bid", Label: "Bid", Input: "number"},
		{Name: "ask", Label: "Ask", Input: "number"},
		{Name: "benchmark", Label: "Benchmark", Input: "text"},
		{Name: "commentary", Label: "Commentary", Input: "textarea"},
		{Name: "security", Label: "Security", Input: "text"},
		{Name: "status", Label: "Status", Input: "text"},
		{Name: "trader", Label: "Trader", Input: "text"},
		{Name: "book", Label: "Book", Input: "text"},
		{Name: "dealName", Label: "Deal Name", Input: "text"},
		{Name: "dealType", Label: "Deal Type", Input: "text"},
		{Name: "sourceListId", Label: "Source List Id", Input: "text"},
		{Name: "side", Label: "Side", Input: "text"},
	},
	parse: func(v url.Values) (*domain.BidList, validation.Errors) {
		f := newFormReader(v)
		b := &domain.BidList{
			Account:      f.str("account"),
			Type:         f.str("type"),
			BidQuantity:  f.float("bidQuantity"),
			AskQuantity:  f.float("askQuantity"),
			Bid:          f.float("bid"),
			Ask:          f.float("ask"),
			Benchmark:    f.str("benchmark"),
			Commentary:   f.str("commentary"),
			Security:     f.str("security"),
			Status:       f.str("status"),
			Trader:       f.str("trader"),
			Book:         f.str("book"),
			DealName:     f.str("dealName"),
			DealType:     f.str("dealType"),
			SourceListID: f.str("sourceListId"),
			Side:         f.str("side"),
		}
		return b, f.errs
	},
	toForm: func(b *domain.BidList) url.Values {
		return url.Values{
			"id":           {formatID(b.ID)},
			"account":      {b.Account},
			"type":         {b.Type},
			"bidQuantity":  {formatFloat(b.BidQuantity)},
			"askQuantity":  {formatFloat(b.AskQuantity)},
			"bid":          {formatFloat(b.Bid)},
			"ask":          {formatFloat(b.Ask)},
			"benchmark":    {b.Benchmark},
			"commentary":   {b.Commentary},
			"security":     {b.Security},
			"status":       {b.Status},
			"trader":       {b.Trader},
			"book":         {b.Book},
			"dealName":     {b.DealName},
			"dealType":     {b.DealType},
			"sourceListId": {b.SourceListID},
			"side":         {b.Side},
		}
	},
}

var curvePointEntity = entity[domain.CurvePoint]{
	name:  "curvePoint",
	title: "Curve Point",
	fields: []field{
		{Name: "curveId", Label: "Curve Id", Input: "number", Listed: true},
		{Name: "asOfDate", Label: "As Of Date", Input: "date"},
		{Name: "term", Label: "Term", Input: "number", Listed: true},
		{Name: "value", Label: "Value", Input: "number", Listed: true},
	},
	parse: func(v url.Values) (*domain.CurvePoint, validation.Errors) {
		f := newFormReader(v)
		cp := &domain.CurvePoint{
			CurveID:  f.int("curveId"),
			AsOfDate: f.date("asOfDate"),
			Term:     f.float("term"),
			Value:    f.float("value"),
		}
		// Zero is a valid curve id; only a missing one is rejected.
		if f.str("curveId") == "" {
			f.errs.Add("curveId", msgCurveIDMissing)
		}
		return cp, f.errs
	},
	toForm: func(cp *domain.CurvePoint) url.Values {
		return url.Values{
			"id":       {formatID(cp.ID)},
			"curveId":  {strconv.Itoa(cp.CurveID)},
			"asOfDate": {formatDate(cp.AsOfDate)},
			"term":     {formatFloat(cp.Term)},
			"value":    {formatFloat(cp.Value)},
		}
	},
}

var ratingEntity = entity[domain.Rating]{
	name:  "rating",
	title: "Rating",
	fields: []field{
		{Name: "moodysRating", Label: "Moodys Rating", Input: "text", Listed: true},
		{Name: "sandPRating", Label: "SandP Rating", Input: "text", Listed: true},
		{Name: "fitchRating", Label: "Fitch Rating", Input: "text", Listed: true},
		{Name: "orderNumber", Label: "Order Number", Input: "number", Listed: true},
	},
	parse: func(v url.Values) (*domain.Rating, validation.Errors) {
		f := newFormReader(v)
		r := &domain.Rating{
			MoodysRating: f.str("moodysRating"),
			SandPRating:  f.str("sandPRating"),
			FitchRating:  f.str("fitchRating"),
			OrderNumber:  f.int("orderNumber"),
		}
		return r, f.errs
	},
	toForm: func(r *domain.Rating) url.Values {
		return url.Values{
			"id":           {formatID(r.ID)},
			"moodysRating": {r.MoodysRating},
			"sandPRating":  {r.SandPRating},
			"fitchRating":  {r.FitchRating},
			"orderNumber":  {strconv.Itoa(r.OrderNumber)},
		}
	},
}

var ruleEntity = entity[domain.RuleName]{
	name:  "rule",
	title: "Rule",
	fields: []field{
		{Name: "name", Label: "Name", Input: "text", Listed: true},
		{Name: "description", Label: "Description", Input: "text", Listed: true},
		{Name: "json", Label: "Json", Input: "textarea", Listed: true},
		{Name: "template", Label: "Template", Input: "textarea", Listed: true},
		{Name: "sqlStr", Label: "SQL", Input: "textarea", Listed: true},
		{Name: "sqlPart", Label: "SQL Part", Input: "textarea", Listed: true},
	},
	parse: func(v url.Values) (*domain.RuleName, validation.Errors) {
		f := newFormReader(v)
		r := &domain.RuleName{
			Name:        f.str("name"),
			Description: f.str("description"),
			JSON:        f.str("json"),
			Template:    f.str("template"),
			SQLStr:      f.str("sqlStr"),
			SQLPart:     f.str("sqlPart"),
		}
		return r, f.errs
	},
	toForm: func(r *domain.RuleName) url.Values {
		return url.Values{
			"id":          {formatID(r.ID)},
			"name":        {r.Name},
			"description": {r.Description},
			"json":        {r.JSON},
			"template":    {r.Template},
			"sqlStr":      {r.SQLStr},
			"sqlPart":     {r.SQLPart},
		}
	},
}

var tradeEntity = entity[domain.Trade]{
	name:  "trade",
	title: "Trade",
	fields: []field{
		{Name: "account", Label: "Account", Input: "text", Listed: true},
		{Name: "type", Label: "Type", Input: "text", Listed: true},
		{Name: "buyQuantity", Label: "Buy Quantity", Input: "number", Listed: true},
		{Name: "sellQuantity", Label: "Sell Quantity", Input: "number"},
		{Name: "buyPrice", Label: "Buy Price", Input: "number"},
		{Name: "sellPrice", Label: "Sell Price", Input: "number"},
		{Name: "benchmark", Label: "Benchmark", Input: "text"},
		{Name: "security", Label: "Security", Input: "text"},
		{Name: "status", Label: "Status", Input: "text"},
		{Name: "trader", Label: "Trader", Input: "text"},
		{Name: "book", Label: "Book", Input: "text"},
		{Name: "dealName", Label: "Deal Name", Input: "text"},
		{Name: "dealType", Label: "Deal Type", Input: "text"},
		{Name: "sourceListId", Label: "Source List Id", Input: "text"},
		{Name: "side", Label: "Side", Input: "text"},
	},
	parse: func(v url.Values) (*domain.Trade, validation.Errors) {
		f := newFormReader(v)
		t := &domain.Trade{
			Account:      f.str("account"),
			Type:         f.str("type"),
			BuyQuantity:  f.float("buyQuantity"),
			SellQuantity: f.float("sellQuantity"),
			BuyPrice:     f.float("buyPrice"),
			SellPrice:    f.float("sellPrice"),
			Benchmark:    f.str("benchmark"),
			Security:     f.str("security"),
			Status:       f.str("status"),
			Trader:       f.str("trader"),
			Book:         f.str("book"),
			DealName:     f.str("dealName"),
			DealType:     f.str("dealType"),
			SourceListID: f.str("sourceListId"),
			Side:         f.str("side"),
		}
		return t, f.errs
	},
	toForm: func(t *domain.Trade) url.Values {
		return url.Values{
			"id":           {formatID(t.ID)},
			"account":      {t.Account},
			"type":         {t.Type},
			"buyQuantity":  {formatFloat(t.BuyQuantity)},
			"sellQuantity": {formatFloat(t.SellQuantity)},
			"buyPrice":     {formatFloat(t.BuyPrice)},
			"sellPrice":    {formatFloat(t.SellPrice)},
			"benchmark":    {t.Benchmark},
			"security":     {t.Security},
			"status":       {t.Status},
			"trader":       {t.Trader},
			"book":         {t.Book},
			"dealName":     {t.DealName},
			"dealType":     {t.DealType},
			"sourceListId": {t.SourceListID},
			"side":         {t.Side},
		}
	},
}

// The password is never rendered back, so toForm leaves it out.
var userEntity = entity[domain.User]{
	name:  "user",
	title: "User",
	fields: []field{
		{Name: "fullname", Label: "Full Name", Input: "text", Listed: true},
		{Name: "username", Label: "Username", Input: "text", Listed: true},
		{Name: "password", Label: "Password", Input: "password"},
		{Name: "role", Label: "Role", Input: "select", Options: []string{domain.RoleAdmin, domain.RoleUser}, Listed: true},
	},
	parse: func(v url.Values) (*domain.User, validation.Errors) {
		f := newFormReader(v)
		u := &domain.User{
			Username: f.str("username"),
			Password: v.Get("password"),
			Fullname: f.str("fullname"),
			Role:     f.str("role"),
		}
		return u, f.errs
	},
	toForm: func(u *domain.User) url.Values {
		return url.Values{
			"id":       {formatID(u.ID)},
			"fullname": {u.Fullname},
			"username": {u.Username},
			"role":     {u.Role},
		}
	},
}
