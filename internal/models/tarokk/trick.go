package tarokk

// TrickPlay はトリック中の1枚のプレイ（誰がどのカードを出したか）を表します。
type TrickPlay struct {
	PlayerPosition int  `json:"player_position"`
	Card           Card `json:"card"`
}

// TrickRecord は完了した1トリックの記録です。
// 最終トリック判定（パガートウルティモ）やXXIキャッチ判定に使用します。
type TrickRecord struct {
	Number         int         `json:"number"` // 1-9
	Plays          []TrickPlay `json:"plays"`
	WinnerPosition int         `json:"winner_position"`
}

// Cards はこのトリックで出された4枚を出された順に返します。
func (t TrickRecord) Cards() []Card {
	cards := make([]Card, 0, len(t.Plays))
	for _, p := range t.Plays {
		cards = append(cards, p.Card)
	}
	return cards
}

// ResolveTrickWinner はトリックの勝者のプレイを返します。
// タロックが出ていれば最強のタロック、いなければリードスートの最強カードが勝ちます。
func ResolveTrickWinner(plays []TrickPlay) TrickPlay {
	leadSuit := plays[0].Card.Suit

	var bestTarokk *TrickPlay
	for i := range plays {
		if plays[i].Card.IsTarokk() {
			if bestTarokk == nil || plays[i].Card.TarokkValue() > bestTarokk.Card.TarokkValue() {
				bestTarokk = &plays[i]
			}
		}
	}
	if bestTarokk != nil {
		return *bestTarokk
	}

	best := plays[0]
	for _, p := range plays[1:] {
		if p.Card.Suit == leadSuit && p.Card.SuitRankValue() > best.Card.SuitRankValue() {
			best = p
		}
	}
	return best
}
