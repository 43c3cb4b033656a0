package tarokk

// BidType はオークションでのビッドの種類を表します。
type BidType string

const (
	BidPass  BidType = "pass"
	BidThree BidType = "three" // タロンから3枚、ゲーム値1
	BidTwo   BidType = "two"   // タロンから2枚、ゲーム値2
	BidOne   BidType = "one"   // タロンから1枚、ゲーム値3
	BidSolo  BidType = "solo"  // タロンから0枚、ゲーム値4
	BidHold  BidType = "hold"  // 現在の最高ビッドに並ぶ（既にビッドした者のみ）
)

var bidGameValues = map[BidType]int{
	BidPass:  0,
	BidThree: 1,
	BidTwo:   2,
	BidOne:   3,
	BidSolo:  4,
	BidHold:  0, // ホールド成立時に対象ビッドの値を引き継ぐ
}

var bidTalonCards = map[BidType]int{
	BidPass:  0,
	BidThree: 3,
	BidTwo:   2,
	BidOne:   1,
	BidSolo:  0,
	BidHold:  0,
}

// Bid はオークションフェーズの1回のビッドを表します。
type Bid struct {
	PlayerPosition int     `json:"player_position"`
	Type           BidType `json:"bid_type"`
	GameValue      int     `json:"game_value"`
	TalonCards     int     `json:"talon_cards"`
}

// NewBid は指定プレイヤー・種類のビッドを生成します。
// GameValueとTalonCardsは種類から導出されます。
func NewBid(position int, bidType BidType) Bid {
	return Bid{
		PlayerPosition: position,
		Type:           bidType,
		GameValue:      bidGameValues[bidType],
		TalonCards:     bidTalonCards[bidType],
	}
}

// IsHigherThan はこのビッドが相手より高いかどうかを返します。
// ビッドの順序（昇順）: pass < three < two < one < solo。
// holdは最高ビッドに並ぶだけなので高くはなりません。
func (b Bid) IsHigherThan(other *Bid) bool {
	if other == nil {
		return b.Type != BidPass
	}
	if b.Type == BidPass || b.Type == BidHold {
		return false
	}
	if other.Type == BidPass {
		return true
	}
	return b.GameValue > other.GameValue
}
