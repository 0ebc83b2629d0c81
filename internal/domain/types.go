package domain

import "time"

// Validation is declared with `validate` tags. The `msg` tag holds the
// message shown next to the form field when any rule on that field fails,
// unless the rule carries its own message (see package validation).

type BidList struct {
	ID           int64
	Account      string  `form:"account" validate:"required" msg:"Account is mandatory"`
	Type         string  `form:"type" validate:"required" msg:"Type is mandatory"`
	BidQuantity  float64 `form:"bidQuantity" validate:"gte=1" msg:"Bid Quantity must be at least 1.0"`
	AskQuantity  float64 `form:"askQuantity"`
	Bid          float64 `form:"bid"`
	Ask          float64 `form:"ask"`
	Benchmark    string  `form:"benchmark"`
	BidListDate  *time.Time
	Commentary   string `form:"commentary"`
	Security     string `form:"security"`
	Status       string `form:"status"`
	Trader       string `form:"trader"`
	Book         string `form:"book"`
	CreationName string
	CreationDate *time.Time
	RevisionName string
	RevisionDate *time.Time
	DealName     string `form:"dealName"`
	DealType     string `form:"dealType"`
	SourceListID string `form:"sourceListId"`
	Side         string `form:"side"`
}

type CurvePoint struct {
	ID           int64
	CurveID      int        `form:"curveId"`
	AsOfDate     *time.Time `form:"asOfDate"`
	Term         float64    `form:"term" validate:"gte=1" msg:"Term must be at least 1.0"`
	Value        float64    `form:"value" validate:"gte=1" msg:"Value must be at least 1.0"`
	CreationDate *time.Time
}

type Rating struct {
	ID           int64
	MoodysRating string `form:"moodysRating" validate:"required" msg:"MoodysRating is mandatory"`
	SandPRating  string `form:"sandPRating" validate:"required" msg:"SandPRating is mandatory"`
	FitchRating  string `form:"fitchRating" validate:"required" msg:"FitchRating is mandatory"`
	OrderNumber  int    `form:"orderNumber" validate:"gte=1" msg:"Order Number must be at least 1"`
}

type RuleName struct {
	ID          int64
	Name        string `form:"name" validate:"required" msg:"Name is mandatory"`
	Description string `form:"description" validate:"required" msg:"Description is mandatory"`
	JSON        string `form:"json" validate:"required" msg:"Json is mandatory"`
	Template    string `form:"template" validate:"required" msg:"Template is mandatory"`
	SQLStr      string `form:"sqlStr" validate:"required" msg:"SQL is mandatory"`
	SQLPart     string `form:"sqlPart" validate:"required" msg:"SQL Part is mandatory"`
}

type Trade struct {
	ID           int64
	Account      string  `form:"account" validate:"required" msg:"Account is mandatory"`
	Type         string  `form:"type" validate:"required" msg:"Type is mandatory"`
	BuyQuantity  float64 `form:"buyQuantity" validate:"gte=1" msg:"Buy Quantity must be at least 1.0"`
	SellQuantity float64 `form:"sellQuantity"`
	BuyPrice     float64 `form:"buyPrice"`
	SellPrice    float64 `form:"sellPrice"`
	Benchmark    string  `form:"benchmark"`
	TradeDate    *time.Time
	Security     string `form:"security"`
	Status       string `form:"status"`
	Trader       string `form:"trader"`
	Book         string `form:"book"`
	CreationName string
	CreationDate *time.Time
	RevisionName string
	RevisionDate *time.Time
	DealName     string `form:"dealName"`
	DealType     string `form:"dealType"`
	SourceListID string `form:"sourceListId"`
	Side         string `form:"side"`
}

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User is an application account. Password holds the plain-text password
// while a form is being validated and the bcrypt hash once persisted.
type User struct {
	ID       int64
	Username string `form:"username" validate:"required,max=125" msg:"Username is mandatory"`
	Password string `form:"password" validate:"required,password" msg:"Password is mandatory"`
	Fullname string `form:"fullname" validate:"required,max=125" msg:"FullName is mandatory"`
	Role     string `form:"role" validate:"required,oneof=ADMIN USER" msg:"Role is mandatory"`
}
