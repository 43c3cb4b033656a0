package tarokk

import (
	"fmt"

	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/models/tarokk"
)

// LegalCards は出せるカードの一覧を返します。
//
// ルール:
//  1. リード（トリックの最初のカード）の場合: 任意のカード
//  2. フォローの場合:
//     a. リードスートを持っていれば必ずフォロー
//     b. リードスートがなければタロックを必ず出す
//     c. リードスートもタロックもなければ任意のカード
func LegalCards(hand []tarokk.Card, leadSuit tarokk.Suit, isLeading bool) []tarokk.Card {
	if isLeading {
		return hand
	}

	var followCards []tarokk.Card
	for _, c := range hand {
		if c.Suit == leadSuit {
			followCards = append(followCards, c)
		}
	}
	if len(followCards) > 0 {
		return followCards
	}

	var tarokks []tarokk.Card
	for _, c := range hand {
		if c.IsTarokk() {
			tarokks = append(tarokks, c)
		}
	}
	if len(tarokks) > 0 {
		return tarokks
	}

	return hand
}

// ValidatePlay はカードプレイが合法かどうかを検証し、違反の場合は理由を返します。
func ValidatePlay(card tarokk.Card, hand []tarokk.Card, leadSuit tarokk.Suit, isLeading bool) (bool, string) {
	inHand := false
	for _, c := range hand {
		if c.ID == card.ID {
			inHand = true
			break
		}
	}
	if !inHand {
		return false, "card not in hand"
	}

	for _, legal := range LegalCards(hand, leadSuit, isLeading) {
		if legal.ID == card.ID {
			return true, "OK"
		}
	}

	if !isLeading {
		for _, c := range hand {
			if c.Suit == leadSuit {
				return false, fmt.Sprintf("must follow suit: %s", leadSuit)
			}
		}
		if !card.IsTarokk() {
			for _, c := range hand {
				if c.IsTarokk() {
					return false, "must play tarokk when void in lead suit"
				}
			}
		}
	}

	return false, "illegal card play"
}

// ValidateDiscard は捨て札が合法かどうかを検証します。
// キングとオナーは捨てられません。
func ValidateDiscard(cards []tarokk.Card) (bool, string) {
	for _, c := range cards {
		if c.IsKing() {
			return false, fmt.Sprintf("cannot discard kings: %s", c)
		}
		if c.IsHonour() {
			return false, fmt.Sprintf("cannot discard honours: %s", c)
		}
	}
	return true, "OK"
}

// CountTarokksInDiscard は捨て札に含まれるタロックの枚数を返します。
// プレイヤーは捨てたタロックの枚数を公開する義務があります。
func CountTarokksInDiscard(cards []tarokk.Card) int {
	return tarokk.CountTarokks(cards)
}

// CanAnnulHand は手札を流せるか（配り直しを要求できるか）どうかを判定します。
//
// 流せる条件:
//   - キング4枚すべて
//   - タロックが1枚だけでそれがXXIまたはパガート
//   - タロックが1枚もない
//   - タロックがXXIとパガートの2枚のみ
func CanAnnulHand(hand []tarokk.Card) (bool, string) {
	kings := 0
	for _, c := range hand {
		if c.IsKing() {
			kings++
		}
	}
	if kings == 4 {
		return true, "all four kings"
	}

	var tarokks []tarokk.Card
	for _, c := range hand {
		if c.IsTarokk() {
			tarokks = append(tarokks, c)
		}
	}

	switch len(tarokks) {
	case 0:
		return true, "no tarokks"
	case 1:
		if tarokks[0].Rank == tarokk.RankXXI {
			return true, "singleton XXI"
		}
		if tarokks[0].Rank == tarokk.RankPagat {
			return true, "singleton pagat"
		}
	case 2:
		ranks := map[string]bool{tarokks[0].Rank: true, tarokks[1].Rank: true}
		if ranks[tarokk.RankXXI] && ranks[tarokk.RankPagat] {
			return true, "only XXI and pagat"
		}
	}

	return false, "hand cannot be annulled"
}

// HasTrull は手札にオナー3枚すべて（トゥル）があるかどうかを返します。
func HasTrull(hand []tarokk.Card) bool {
	ranks := map[string]bool{}
	for _, c := range hand {
		if c.IsHonour() {
			ranks[c.Rank] = true
		}
	}
	return ranks[tarokk.RankSkiz] && ranks[tarokk.RankXXI] && ranks[tarokk.RankPagat]
}

// HasFourKings は手札にキング4枚すべてがあるかどうかを返します。
func HasFourKings(hand []tarokk.Card) bool {
	kings := 0
	for _, c := range hand {
		if c.IsKing() {
			kings++
		}
	}
	return kings == 4
}

// CanAnnounce は指定の宣言がこの手札で可能かどうかを判定します。
// パガートウルティモはパガートの所持、XXIキャッチはスキーズの所持が必要です。
// それ以外の宣言はカード条件なしの予告です。
func CanAnnounce(hand []tarokk.Card, t tarokk.AnnouncementType) (bool, string) {
	switch t {
	case tarokk.AnnouncementPagatUltimo:
		for _, c := range hand {
			if c.IsTarokk() && c.Rank == tarokk.RankPagat {
				return true, "OK"
			}
		}
		return false, "must hold the pagat to announce pagat ultimo"
	case tarokk.AnnouncementXXICatch:
		for _, c := range hand {
			if c.IsTarokk() && c.Rank == tarokk.RankSkiz {
				return true, "OK"
			}
		}
		return false, "must hold the skiz to announce XXI catch"
	}
	return true, "OK"
}

// ValidAnnouncements は現在の手札で宣言可能な種類の一覧を返します。
func ValidAnnouncements(hand []tarokk.Card) []tarokk.AnnouncementType {
	var valid []tarokk.AnnouncementType
	for _, t := range tarokk.AllAnnouncementTypes {
		if ok, _ := CanAnnounce(hand, t); ok {
			valid = append(valid, t)
		}
	}
	return valid
}
