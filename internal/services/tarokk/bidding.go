package tarokk

import (
	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/models/tarokk"
)

// NumPlayers はハンガリアンタロックの固定プレイヤー数です。
const NumPlayers = 4

// CanPlaceBid はプレイヤーが指定のビッドを行えるかどうかを判定します。
//
// ルール:
//   - pass/hold以外のビッドにはオナー（スキーズ・XXI・パガート）の所持が必要
//   - holdは同じオークションで既に非passのビッドをしていること、かつ
//     並ぶべき最高ビッドが存在することが条件
//   - 新しいビッドは現在の最高ビッドより厳密に高いこと
//
// Returns:
//   bool  : ビッド可能ならtrue
//   string: 不可の場合の理由（"OK"なら可能）
func CanPlaceBid(player *tarokk.Player, bidType tarokk.BidType, bidHistory []tarokk.Bid) (bool, string) {
	if bidType != tarokk.BidPass && bidType != tarokk.BidHold {
		if !player.HasHonour() {
			return false, "must have at least one honour (skiz, XXI, or pagat) to bid"
		}
	}

	if bidType == tarokk.BidHold {
		if !playerHasBid(player.Position, bidHistory) {
			return false, "cannot hold - must have already bid in this auction"
		}
		if HighestBid(bidHistory) == nil {
			return false, "no bid to hold"
		}
	}

	if bidType != tarokk.BidPass && bidType != tarokk.BidHold {
		newBid := tarokk.NewBid(player.Position, bidType)
		if !newBid.IsHigherThan(HighestBid(bidHistory)) {
			return false, "bid must be higher than current highest bid"
		}
	}

	return true, "OK"
}

// playerHasBid は指定プレイヤーがこのオークションで非pass・非holdの
// ビッドを既に行っているかどうかを返します。
func playerHasBid(position int, bidHistory []tarokk.Bid) bool {
	for _, b := range bidHistory {
		if b.PlayerPosition == position && b.Type != tarokk.BidPass && b.Type != tarokk.BidHold {
			return true
		}
	}
	return false
}

// HighestBid は現在の最高ビッド（passを除く）を返します。ビッドがない場合はnilです。
func HighestBid(bidHistory []tarokk.Bid) *tarokk.Bid {
	var highest *tarokk.Bid
	for i := range bidHistory {
		b := &bidHistory[i]
		if b.Type == tarokk.BidPass {
			continue
		}
		if highest == nil || b.GameValue > highest.GameValue {
			highest = b
		}
	}
	return highest
}

// IsAuctionComplete はオークションが終了したかどうかを判定します。
//
// 終了条件:
//  1. 誰かがsoloをビッドした（最高ビッドのため即終了）
//  2. 4人全員がpassした（流局、配り直し）
//  3. 1巡目以降、ビッドの後に3連続passが続いた（最後のビッドが勝ち）
func IsAuctionComplete(bidHistory []tarokk.Bid) bool {
	if len(bidHistory) == 0 {
		return false
	}

	for _, b := range bidHistory {
		if b.Type == tarokk.BidSolo {
			return true
		}
	}

	if len(bidHistory) >= NumPlayers {
		allPass := true
		for _, b := range bidHistory {
			if b.Type != tarokk.BidPass {
				allPass = false
				break
			}
		}
		if allPass {
			return true
		}

		lastThree := bidHistory[len(bidHistory)-3:]
		threePasses := true
		for _, b := range lastThree {
			if b.Type != tarokk.BidPass {
				threePasses = false
				break
			}
		}
		if threePasses {
			for _, b := range bidHistory[:len(bidHistory)-3] {
				if b.Type != tarokk.BidPass {
					return true
				}
			}
		}
	}

	return false
}

// AuctionDeclarer はビッド履歴から宣言者の席を決定します。
// 全員passの場合はnilを返します（流局）。
func AuctionDeclarer(bidHistory []tarokk.Bid) *int {
	highest := HighestBid(bidHistory)
	if highest == nil {
		return nil
	}
	pos := highest.PlayerPosition
	return &pos
}

// ValidBidTypes はプレイヤーが現時点で選べるビッドの一覧を返します。
// your_turn通知に使用します。passは常に可能です。
func ValidBidTypes(player *tarokk.Player, bidHistory []tarokk.Bid) []tarokk.BidType {
	valid := []tarokk.BidType{tarokk.BidPass}

	if !player.HasHonour() {
		return valid
	}

	highest := HighestBid(bidHistory)
	for _, bt := range []tarokk.BidType{tarokk.BidThree, tarokk.BidTwo, tarokk.BidOne, tarokk.BidSolo} {
		if tarokk.NewBid(player.Position, bt).IsHigherThan(highest) {
			valid = append(valid, bt)
		}
	}

	if playerHasBid(player.Position, bidHistory) && highest != nil {
		valid = append(valid, tarokk.BidHold)
	}

	return valid
}
