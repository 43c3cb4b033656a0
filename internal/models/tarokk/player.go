package tarokk

import (
	"fmt"

	"github.com/google/uuid"
)

// Player はテーブルに着席している1人のプレイヤーを表します。
// ゾーン（手札・獲得トリック・捨て札）と役割フラグ、接続状態を持ちます。
type Player struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Position        int    `json:"position"` // 0-3
	Hand            []Card `json:"hand"`
	TricksWon       []Card `json:"tricks_won"`
	DiscardPile     []Card `json:"discard_pile"`
	IsConnected     bool   `json:"is_connected"`
	IsReady         bool   `json:"is_ready"`
	IsDeclarer      bool   `json:"is_declarer"`
	IsPartner       bool   `json:"is_partner"`
	PartnerRevealed bool   `json:"partner_revealed"`
}

// NewPlayer は新しいプレイヤーを生成します。IDが空の場合はUUIDを採番します。
func NewPlayer(id, name string, position int) *Player {
	if id == "" {
		id = uuid.NewString()
	}
	return &Player{
		ID:          id,
		Name:        name,
		Position:    position,
		IsConnected: true,
	}
}

// AddCardsToHand は手札にカードを加えます。
func (p *Player) AddCardsToHand(cards []Card) {
	p.Hand = append(p.Hand, cards...)
}

// FindCard は手札から指定IDのカードを探します。見つからない場合はnilです。
func (p *Player) FindCard(cardID string) *Card {
	for i := range p.Hand {
		if p.Hand[i].ID == cardID {
			return &p.Hand[i]
		}
	}
	return nil
}

// HasCard は指定IDのカードを手札に持っているかどうかを返します。
func (p *Player) HasCard(cardID string) bool {
	return p.FindCard(cardID) != nil
}

// RemoveCardsFromHand は指定IDのカード群を手札から取り除いて返します。
// 1枚でも見つからない場合は手札を変更せずエラーを返します。
func (p *Player) RemoveCardsFromHand(cardIDs []string) ([]Card, error) {
	removed := make([]Card, 0, len(cardIDs))
	for _, id := range cardIDs {
		c := p.FindCard(id)
		if c == nil {
			return nil, fmt.Errorf("card %s not found in hand", id)
		}
		removed = append(removed, *c)
	}
	for _, c := range removed {
		p.removeFromHand(c.ID)
	}
	return removed, nil
}

// PlayCard は手札から1枚取り出して返します。
func (p *Player) PlayCard(cardID string) (Card, error) {
	c := p.FindCard(cardID)
	if c == nil {
		return Card{}, fmt.Errorf("card %s not found in hand", cardID)
	}
	played := *c
	p.removeFromHand(cardID)
	return played, nil
}

// DiscardCards は指定カードを手札から捨て札に移します。
// キングとオナーは保護されているため捨てられません。全カードの検証後に適用します。
func (p *Player) DiscardCards(cardIDs []string) ([]Card, error) {
	toDiscard := make([]Card, 0, len(cardIDs))
	for _, id := range cardIDs {
		c := p.FindCard(id)
		if c == nil {
			return nil, fmt.Errorf("card %s not found in hand", id)
		}
		if !c.CanBeDiscarded() {
			return nil, fmt.Errorf("card %s cannot be discarded (kings and honours are protected)", c)
		}
		toDiscard = append(toDiscard, *c)
	}
	for _, c := range toDiscard {
		p.removeFromHand(c.ID)
		p.DiscardPile = append(p.DiscardPile, c)
	}
	return toDiscard, nil
}

func (p *Player) removeFromHand(cardID string) {
	for i := range p.Hand {
		if p.Hand[i].ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return
		}
	}
}

// AddToTricks は獲得したトリックのカードを加えます。
func (p *Player) AddToTricks(cards []Card) {
	p.TricksWon = append(p.TricksWon, cards...)
}

// HasSuit は指定スートのカードを手札に持っているかどうかを返します。
func (p *Player) HasSuit(suit Suit) bool {
	for _, c := range p.Hand {
		if c.Suit == suit {
			return true
		}
	}
	return false
}

// HasTarokk はタロックを1枚でも持っているかどうかを返します。
func (p *Player) HasTarokk() bool {
	return p.HasSuit(SuitTarokk)
}

// HasHonour はオナー（スキーズ・XXI・パガート）を1枚でも持っているかどうかを
// 返します。ビッドの参加条件です。
func (p *Player) HasHonour() bool {
	for _, c := range p.Hand {
		if c.IsHonour() {
			return true
		}
	}
	return false
}

// CountTarokks は手札のタロック枚数を返します。
func (p *Player) CountTarokks() int {
	return CountTarokks(p.Hand)
}

// TotalPoints は獲得トリックと捨て札の合計カード点数を返します。
func (p *Player) TotalPoints() int {
	return TotalPoints(p.TricksWon) + TotalPoints(p.DiscardPile)
}

// ResetForNewHand は次のハンドに向けてゾーンと役割フラグをリセットします。
// 接続状態とレディ状態はそのまま保持します。
func (p *Player) ResetForNewHand() {
	p.Hand = nil
	p.TricksWon = nil
	p.DiscardPile = nil
	p.IsDeclarer = false
	p.IsPartner = false
	p.PartnerRevealed = false
}

// PublicView は他プレイヤー視点の公開情報を返します。
// 手札の中身は枚数のみ公開し、パートナー状態は公開済みの場合だけ含めます。
type PlayerView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Position       int    `json:"position"`
	HandSize       int    `json:"hand_size"`
	IsConnected    bool   `json:"is_connected"`
	IsReady        bool   `json:"is_ready"`
	IsDeclarer     bool   `json:"is_declarer"`
	IsPartner      *bool  `json:"is_partner,omitempty"`
	TotalPoints    int    `json:"total_points"`
	TricksWonCount int    `json:"tricks_won_count"`
	Hand           []Card `json:"hand,omitempty"`
}

// View はプレイヤーの観測者別ビューを返します。
//
// Parameters:
//   hideHand : trueの場合、手札の中身を含めません（他プレイヤー視点）
func (p *Player) View(hideHand bool) PlayerView {
	v := PlayerView{
		ID:             p.ID,
		Name:           p.Name,
		Position:       p.Position,
		HandSize:       len(p.Hand),
		IsConnected:    p.IsConnected,
		IsReady:        p.IsReady,
		IsDeclarer:     p.IsDeclarer,
		TotalPoints:    p.TotalPoints(),
		TricksWonCount: len(p.TricksWon) / 4, // 1トリック=4枚
	}
	if p.PartnerRevealed {
		isPartner := p.IsPartner
		v.IsPartner = &isPartner
	}
	if !hideHand {
		v.Hand = p.Hand
	}
	return v
}
