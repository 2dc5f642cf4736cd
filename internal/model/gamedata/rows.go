package gamedata

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"gopkg.in/guregu/null.v3/zero"
)

// Optional columns use the zero package: upstream tables write both null
// and 0 for an absent reference, and each is treated as absent.

const (
	FixedDropSlots = 9
	TeamSlots      = 5
)

type DropSlot struct {
	ItemNo zero.Int
	Amount zero.Int
}

type HeroSlot struct {
	HeroNo zero.Int
	Grade  zero.Int
	Level  zero.Int
}

type Stage struct {
	No              int64    `json:"no"`
	AreaNo          int64    `json:"area_no"`
	StageNo         int64    `json:"stage_no"`
	StageType       int64    `json:"stage_type"`
	LevelType       zero.Int `json:"level_type"`
	Exp             int64    `json:"exp"`
	ItemDropGroupNo zero.Int `json:"item_drop_group_no"`

	// FixedDrops holds item_no_1..9 / amount_1..9 in slot order.
	FixedDrops [FixedDropSlots]DropSlot `json:"-"`
}

// UnmarshalJSON reads every column through gjson so a float or numeric string
// in an integer column degrades to its integer value instead of failing.
func (s *Stage) UnmarshalJSON(data []byte) error {
	r, err := parseRow(data)
	if err != nil {
		return err
	}
	s.No = r.Get("no").Int()
	s.AreaNo = r.Get("area_no").Int()
	s.StageNo = r.Get("stage_no").Int()
	s.StageType = r.Get("stage_type").Int()
	s.LevelType = looseInt(r, "level_type")
	s.Exp = r.Get("exp").Int()
	s.ItemDropGroupNo = looseInt(r, "item_drop_group_no")
	for i := range s.FixedDrops {
		s.FixedDrops[i] = DropSlot{
			ItemNo: looseInt(r, fmt.Sprintf("item_no_%d", i+1)),
			Amount: looseInt(r, fmt.Sprintf("amount_%d", i+1)),
		}
	}
	return nil
}

type StageBattle struct {
	No            int64 `json:"no"`
	TeamNo        int64 `json:"team_no"`
	FormationType int64 `json:"formation_type"`

	// Heroes holds hero_no_i / hero_grade_i / level_i for positions 1..5.
	Heroes [TeamSlots]HeroSlot `json:"-"`
}

func (b *StageBattle) UnmarshalJSON(data []byte) error {
	r, err := parseRow(data)
	if err != nil {
		return err
	}
	b.No = r.Get("no").Int()
	b.TeamNo = r.Get("team_no").Int()
	b.FormationType = r.Get("formation_type").Int()
	for i := range b.Heroes {
		b.Heroes[i] = HeroSlot{
			HeroNo: looseInt(r, fmt.Sprintf("hero_no_%d", i+1)),
			Grade:  looseInt(r, fmt.Sprintf("hero_grade_%d", i+1)),
			Level:  looseInt(r, fmt.Sprintf("level_%d", i+1)),
		}
	}
	return nil
}

func parseRow(data []byte) (gjson.Result, error) {
	r := gjson.ParseBytes(data)
	if !r.IsObject() {
		return r, errors.New("row is not a JSON object")
	}
	return r, nil
}

// looseInt reads an optional integer column. Floats truncate, numeric strings
// parse, anything else is absent.
func looseInt(r gjson.Result, key string) zero.Int {
	v := r.Get(key)
	if v.Type != gjson.Number && v.Type != gjson.String {
		return zero.Int{}
	}
	return zero.IntFrom(v.Int())
}

// looseFloat reads an optional number column written as a number or a
// numeric string.
func looseFloat(r gjson.Result, key string) zero.Float {
	return zero.FloatFrom(r.Get(key).Float())
}

// looseText reads a column upstream writes as a string, a number or an
// embedded JSON value. Numbers are formatted without a trailing fraction and
// nested values keep their raw JSON text.
func looseText(r gjson.Result, key string) zero.String {
	v := r.Get(key)
	switch v.Type {
	case gjson.String:
		return zero.StringFrom(v.Str)
	case gjson.Number:
		return zero.StringFrom(strconv.FormatFloat(v.Num, 'f', -1, 64))
	case gjson.JSON:
		return zero.StringFrom(v.Raw)
	default:
		return zero.String{}
	}
}

type StringData struct {
	No   int64  `json:"no"`
	ZhTw string `json:"zh_tw"`
	ZhCn string `json:"zh_cn"`
	Kr   string `json:"kr"`
	En   string `json:"en"`
	Ja   string `json:"ja"`
	Ko   string `json:"ko"`
}

type Item struct {
	No       int64    `json:"no"`
	Grade    int64    `json:"grade"`
	Type     int64    `json:"type"`
	Category int64    `json:"category"`
	NameSno  zero.Int `json:"name_sno"`
}

// ItemDropGroup is one member of a drop group. Rows sharing No form the group.
type ItemDropGroup struct {
	No     int64 `json:"no"`
	ItemNo int64 `json:"item_no"`
	Amount int64 `json:"amount"`
	// DropRate is expressed in units where 1000 is 1%.
	DropRate int64 `json:"drop_rate"`
}

type Hero struct {
	No      int64    `json:"no"`
	Grade   int64    `json:"grade"`
	Race    int64    `json:"race"`
	Element int64    `json:"element"`
	Class   int64    `json:"class"`
	NameSno zero.Int `json:"name_sno"`
}

type Formation struct {
	No   int64 `json:"no"`
	Type int64 `json:"type"`
}

type CashShopItem struct {
	No          int64       `json:"no"`
	Category    int64       `json:"category"`
	Type        string      `json:"type"`
	TypeValue   zero.String `json:"type_value"`
	NameSno     zero.Int    `json:"name_sno"`
	ItemInfoSno zero.Int    `json:"item_info_sno"`
	DescSno     zero.Int    `json:"desc_sno"`
	LimitBuy    zero.Int    `json:"limit_buy"`
	LimitHour   zero.Int    `json:"limit_hour"`
	ItemInfos   zero.String `json:"item_infos"`
	PriceKrw    zero.Float  `json:"price_krw"`
	PriceOther  zero.Float  `json:"price_other"`
}

// UnmarshalJSON tolerates a numeric type_value and an item_infos column
// written as a JSON array instead of its serialized string.
func (c *CashShopItem) UnmarshalJSON(data []byte) error {
	r, err := parseRow(data)
	if err != nil {
		return err
	}
	c.No = r.Get("no").Int()
	c.Category = r.Get("category").Int()
	c.Type = r.Get("type").String()
	c.TypeValue = looseText(r, "type_value")
	c.NameSno = looseInt(r, "name_sno")
	c.ItemInfoSno = looseInt(r, "item_info_sno")
	c.DescSno = looseInt(r, "desc_sno")
	c.LimitBuy = looseInt(r, "limit_buy")
	c.LimitHour = looseInt(r, "limit_hour")
	c.ItemInfos = looseText(r, "item_infos")
	c.PriceKrw = looseFloat(r, "price_krw")
	c.PriceOther = looseFloat(r, "price_other")
	return nil
}

type KeyValue struct {
	No         int64           `json:"no"`
	KeyName    string          `json:"key_name"`
	ValuesData json.RawMessage `json:"values_data"`
}

// Float parses ValuesData, which upstream writes either as a number or as a
// numeric string. Anything else reads as 0.
func (kv *KeyValue) Float() float64 {
	if len(kv.ValuesData) == 0 {
		return 0
	}
	r := gjson.ParseBytes(kv.ValuesData)
	switch r.Type {
	case gjson.Number:
		return r.Num
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

type HeroGrade struct {
	No             int64      `json:"no"`
	NameSno        int64      `json:"name_sno"`
	HeroGradeValue zero.Float `json:"hero_grade_value"`
}

type HeroLevelGrade struct {
	No    int64      `json:"no"`
	Level zero.Int   `json:"level"`
	Value zero.Float `json:"value"`
}

// DecodeRows decodes a table body row by row. A row that fails to decode is
// left out and its index reported in skipped; only a body that is not an
// array is an error.
func DecodeRows[T any](raw []byte) (rows []*T, skipped []int, err error) {
	body := gjson.ParseBytes(raw)
	switch {
	case body.Type == gjson.Null:
		return []*T{}, nil, nil
	case !body.IsArray():
		return nil, nil, errors.New("table body is not a JSON array")
	}

	elems := body.Array()
	rows = make([]*T, 0, len(elems))
	for i, el := range elems {
		if el.Type == gjson.Null {
			skipped = append(skipped, i)
			continue
		}
		row := new(T)
		if err := json.Unmarshal([]byte(el.Raw), row); err != nil {
			skipped = append(skipped, i)
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}
