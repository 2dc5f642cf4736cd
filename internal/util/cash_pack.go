package util

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"eversoul.dev/stageguide/internal/model/gamedata"
)

const (
	CashPackBarrier      = "barrier"
	CashPackStage        = "stage"
	CashPackTower        = "tower"
	CashPackGradeEternal = "grade_eternal"

	cashPackPlaceholder = "？？？"
	cashPackSeparator   = "-------------------------"
)

var cashPackLabels = map[string]string{
	CashPackBarrier:      "通关礼包",
	CashPackStage:        "主线礼包",
	CashPackTower:        "起源之塔礼包",
	CashPackGradeEternal: "角色升阶礼包",
}

// CashPackLabel names a package kind, "特殊礼包" for any unknown kind.
func CashPackLabel(kind string) string {
	if label, ok := cashPackLabels[kind]; ok {
		return label
	}
	return "特殊礼包"
}

// FormatCashPacks renders one text block per shop item of the given kind bound
// to the stage's global number.
func FormatCashPacks(b *gamedata.Bundle, kind string, stage *gamedata.Stage) []string {
	stageNo := strconv.FormatInt(stage.No, 10)
	shopItems := lo.Filter(b.CashShopItems, func(c *gamedata.CashShopItem, _ int) bool {
		return c.Type == kind && c.TypeValue.Valid && c.TypeValue.String == stageNo
	})

	packs := make([]string, 0, len(shopItems))
	for _, item := range shopItems {
		packs = append(packs, formatCashPack(b, CashPackLabel(kind), item))
	}
	return packs
}

func formatCashPack(b *gamedata.Bundle, label string, item *gamedata.CashShopItem) string {
	sections := []string{"▼【" + label + "】"}

	name := cashPackString(b, gamedata.StringKindCashshop, item.NameSno.Int64)
	desc := cashPackString(b, gamedata.StringKindCashshop, item.ItemInfoSno.Int64)
	limit := cashPackString(b, gamedata.StringKindUI, item.DescSno.Int64)
	limit = strings.Replace(limit, "{0}", strconv.FormatInt(item.LimitBuy.Int64, 10), 1)

	basic := []string{"礼包名称：" + name}
	if desc != cashPackPlaceholder {
		basic = append(basic, "礼包描述："+desc)
	}
	basic = append(basic, limit, "剩余时间："+strconv.FormatInt(item.LimitHour.Int64, 10)+"小时")
	sections = append(sections, strings.Join(basic, "\n"))

	if contents := ParseItemInfos(item.ItemInfos.String); len(contents) > 0 {
		lines := []string{"\n礼包内容："}
		for _, c := range contents {
			lines = append(lines, "・"+ItemDisplayName(b, c[0]).ZhTw+"x"+strconv.FormatInt(c[1], 10))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}

	prices := []string{"\n价格信息："}
	if item.PriceKrw.Valid {
		prices = append(prices, "・ "+formatPrice(item.PriceKrw.Float64)+"韩元")
	}
	if item.PriceOther.Valid {
		prices = append(prices, "・ "+formatPrice(item.PriceOther.Float64)+"日元")
	}
	sections = append(sections, strings.Join(prices, "\n"), cashPackSeparator)

	return strings.Join(sections, "\n")
}

// cashPackString resolves a localized string, substituting the placeholder
// when the pointer is absent or the string is empty.
func cashPackString(b *gamedata.Bundle, kind string, sno int64) string {
	if sno == 0 {
		return cashPackPlaceholder
	}
	if s := StringByType(b, kind, sno).ZhTw; s != "" {
		return s
	}
	return cashPackPlaceholder
}

// ParseItemInfos reads a serialized list such as "[[1001,5],[1002,10]]" as
// (item_no, amount) pairs. Pairs with a non-integer member are dropped.
func ParseItemInfos(raw string) [][2]int64 {
	if raw == "" {
		return nil
	}
	flat := strings.Split(strings.NewReplacer("[", "", "]", "").Replace(raw), ",")

	var pairs [][2]int64
	for i := 0; i+1 < len(flat); i += 2 {
		itemNo, err1 := parseLeadingInt(flat[i])
		amount, err2 := parseLeadingInt(flat[i+1])
		if err1 != nil || err2 != nil {
			continue
		}
		pairs = append(pairs, [2]int64{itemNo, amount})
	}
	return pairs
}

// parseLeadingInt parses the integer prefix of s after trimming spaces, so
// "12.5" reads as 12.
func parseLeadingInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || end == 0 && (s[end] == '-' || s[end] == '+')) {
		end++
	}
	return strconv.ParseInt(s[:end], 10, 64)
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
