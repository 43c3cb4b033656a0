package tarokk

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// DeckSize は42枚、DeckTotalPoints は94点。デッキ検証に使用します。
const (
	DeckSize        = 42
	DeckTotalPoints = 94
	TarokkCount     = 22
	CardsPerSuit    = 5
)

// Deck はハンガリアンタロックの42枚デッキ（Industrie und Glück）を表します。
//
// 構成:
//   - タロック22枚: スキーズ、XXI〜II、パガート（I）
//   - スートカード20枚: 4スート × 5枚（K, Q, C, J, 10）
//
// 合計点数は94点です。
type Deck struct {
	Cards []Card `json:"cards"`
}

// NewDeck は未シャッフルの完全な42枚デッキを生成します。
func NewDeck() *Deck {
	return &Deck{Cards: generateCards()}
}

// NewShuffledDeck はデッキを生成してシャッフルした状態で返します。
func NewShuffledDeck() *Deck {
	d := NewDeck()
	d.Shuffle()
	return d
}

func generateCards() []Card {
	cards := make([]Card, 0, DeckSize)

	// オナー3枚（各5点）
	for _, rank := range []string{RankSkiz, RankXXI, RankPagat} {
		cards = append(cards, Card{
			ID:     uuid.NewString(),
			Suit:   SuitTarokk,
			Rank:   rank,
			Points: 5,
			Type:   CardTypeHonour,
		})
	}

	// 数字タロック19枚（各1点）XX〜II
	numbered := []string{
		"XX", "XIX", "XVIII", "XVII", "XVI", "XV", "XIV", "XIII",
		"XII", "XI", "X", "IX", "VIII", "VII", "VI", "V", "IV", "III", "II",
	}
	for _, rank := range numbered {
		cards = append(cards, Card{
			ID:     uuid.NewString(),
			Suit:   SuitTarokk,
			Rank:   rank,
			Points: 1,
			Type:   CardTypeTarokk,
		})
	}

	// スートカード 4スート × 5枚
	suitRanks := []struct {
		rank   string
		points int
		typ    CardType
	}{
		{RankKing, 5, CardTypeKing},
		{RankQueen, 4, CardTypeSuit},
		{RankCavalier, 3, CardTypeSuit},
		{RankJack, 2, CardTypeSuit},
		{RankTen, 1, CardTypeSuit},
	}
	for _, suit := range PlainSuits {
		for _, sr := range suitRanks {
			cards = append(cards, Card{
				ID:     uuid.NewString(),
				Suit:   suit,
				Rank:   sr.rank,
				Points: sr.points,
				Type:   sr.typ,
			})
		}
	}

	return cards
}

// Shuffle はデッキをシャッフルします。
func (d *Deck) Shuffle() {
	rand.Shuffle(len(d.Cards), func(i, j int) {
		d.Cards[i], d.Cards[j] = d.Cards[j], d.Cards[i]
	})
}

// Deal はデッキの先頭から指定枚数を取り出して返します。
//
// Parameters:
//   n : 配る枚数
// Returns:
//   []Card: 配られたカード
//   error : デッキの残り枚数が足りない場合
func (d *Deck) Deal(n int) ([]Card, error) {
	if n > len(d.Cards) {
		return nil, fmt.Errorf("not enough cards in deck: requested %d, available %d", n, len(d.Cards))
	}
	dealt := d.Cards[:n]
	d.Cards = d.Cards[n:]
	return dealt, nil
}

// Remaining はデッキの残り枚数を返します。
func (d *Deck) Remaining() int {
	return len(d.Cards)
}

// Reset はデッキを新品の42枚の状態に戻します。
func (d *Deck) Reset() {
	d.Cards = generateCards()
}

// Validate はデッキが正確に42枚・合計94点・タロック22枚・各スート5枚で
// あることを検証します。
func (d *Deck) Validate() bool {
	if len(d.Cards) != DeckSize {
		return false
	}
	if TotalPoints(d.Cards) != DeckTotalPoints {
		return false
	}
	if CountTarokks(d.Cards) != TarokkCount {
		return false
	}
	for _, suit := range PlainSuits {
		n := 0
		for _, c := range d.Cards {
			if c.Suit == suit {
				n++
			}
		}
		if n != CardsPerSuit {
			return false
		}
	}
	return true
}
