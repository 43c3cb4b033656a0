package tarokk

import "fmt"

// Suit はカードのスートを表します。4つの通常スートとタロック（切り札）があります。
type Suit string

const (
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitSpades   Suit = "spades"
	SuitClubs    Suit = "clubs"
	SuitTarokk   Suit = "tarokk"
)

// PlainSuits はタロックを除く4つの通常スートです。
var PlainSuits = []Suit{SuitHearts, SuitDiamonds, SuitSpades, SuitClubs}

// タロック（切り札）のランク。スキーズが最強、パガート（I）が最弱ですが
// どちらもオナー（名誉札）です。
const (
	RankSkiz  = "skiz"
	RankXXI   = "XXI"
	RankPagat = "I"
)

// 通常スートのランク。キングが最強です。
const (
	RankKing     = "K"
	RankQueen    = "Q"
	RankCavalier = "C"
	RankJack     = "J"
	RankTen      = "10"
)

// CardType はカードの分類です。オナー判定や捨て札制限に使用します。
type CardType string

const (
	CardTypeHonour CardType = "honour" // スキーズ・XXI・パガート
	CardTypeKing   CardType = "king"
	CardTypeTarokk CardType = "tarokk"
	CardTypeSuit   CardType = "suit"
)

// Card はハンガリアンタロックの1枚のカードを表します。
// タロック（切り札）の場合はSuitがSuitTarokkでRankがローマ数字、
// 通常カードの場合はSuitが4スートのいずれかでRankがK/Q/C/J/10です。
type Card struct {
	ID     string   `json:"id"`
	Suit   Suit     `json:"suit"`
	Rank   string   `json:"rank"`
	Points int      `json:"points"`
	Type   CardType `json:"card_type"`
}

// tarokkOrder はタロックの強さの全順序です。スキーズ=22が最強、パガート=1が最弱。
var tarokkOrder = map[string]int{
	RankSkiz: 22,
	RankXXI:  21,
	"XX":     20,
	"XIX":    19,
	"XVIII":  18,
	"XVII":   17,
	"XVI":    16,
	"XV":     15,
	"XIV":    14,
	"XIII":   13,
	"XII":    12,
	"XI":     11,
	"X":      10,
	"IX":     9,
	"VIII":   8,
	"VII":    7,
	"VI":     6,
	"V":      5,
	"IV":     4,
	"III":    3,
	"II":     2,
	RankPagat: 1,
}

var suitRankOrder = map[string]int{
	RankKing:     5,
	RankQueen:    4,
	RankCavalier: 3,
	RankJack:     2,
	RankTen:      1,
}

// IsTarokk はこのカードがタロック（切り札）かどうかを返します。
func (c Card) IsTarokk() bool {
	return c.Suit == SuitTarokk
}

// IsHonour はこのカードがオナー（スキーズ・XXI・パガート）かどうかを返します。
func (c Card) IsHonour() bool {
	if !c.IsTarokk() {
		return false
	}
	return c.Rank == RankSkiz || c.Rank == RankXXI || c.Rank == RankPagat
}

// IsKing はこのカードがキングかどうかを返します。
func (c Card) IsKing() bool {
	return c.Type == CardTypeKing
}

// CanBeDiscarded は捨て札にできるかどうかを返します。
// キングとオナーは保護されており捨てられません。
func (c Card) CanBeDiscarded() bool {
	return !(c.IsKing() || c.IsHonour())
}

// TarokkValue はタロック同士の強さ比較用の数値を返します。
// タロックでないカードは0を返します。
func (c Card) TarokkValue() int {
	if !c.IsTarokk() {
		return 0
	}
	return tarokkOrder[c.Rank]
}

// SuitRankValue は同一スート内の強さ比較用の数値を返します。
// タロックの場合は0を返します。
func (c Card) SuitRankValue() int {
	if c.IsTarokk() {
		return 0
	}
	return suitRankOrder[c.Rank]
}

func (c Card) String() string {
	if c.IsTarokk() {
		return fmt.Sprintf("Tarokk %s", c.Rank)
	}
	return fmt.Sprintf("%s of %s", c.Rank, c.Suit)
}

// TotalPoints はカード群の合計点数を返します。
func TotalPoints(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Points
	}
	return total
}

// CountTarokks はカード群に含まれるタロックの枚数を返します。
func CountTarokks(cards []Card) int {
	n := 0
	for _, c := range cards {
		if c.IsTarokk() {
			n++
		}
	}
	return n
}
