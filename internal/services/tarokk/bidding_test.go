package tarokk

import (
	"testing"

	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/models/tarokk"
)

func playerWithHand(position int, cards ...tarokk.Card) *tarokk.Player {
	p := tarokk.NewPlayer("", "test", position)
	p.Hand = cards
	return p
}

// TestCanPlaceBid_HonourRequired はオナーなしではビッドできないことをテストします。
func TestCanPlaceBid_HonourRequired(t *testing.T) {
	noHonour := playerWithHand(0, tc("XX"), tc("XIX"), sc(tarokk.SuitHearts, tarokk.RankKing))
	withHonour := playerWithHand(0, tc(tarokk.RankPagat), tc("XX"))

	if ok, _ := CanPlaceBid(noHonour, tarokk.BidThree, nil); ok {
		t.Error("Expected bid without honour to be rejected")
	}
	if ok, reason := CanPlaceBid(withHonour, tarokk.BidThree, nil); !ok {
		t.Errorf("Expected bid with honour to be accepted, got: %s", reason)
	}
	// passはオナーなしでも常に可能
	if ok, _ := CanPlaceBid(noHonour, tarokk.BidPass, nil); !ok {
		t.Error("Expected pass to always be allowed")
	}
}

// TestCanPlaceBid_MustBeHigher は同値以下のビッドが拒否されることをテストします。
func TestCanPlaceBid_MustBeHigher(t *testing.T) {
	player := playerWithHand(1, tc(tarokk.RankSkiz))
	history := []tarokk.Bid{tarokk.NewBid(0, tarokk.BidTwo)}

	tests := []struct {
		bidType tarokk.BidType
		want    bool
	}{
		{tarokk.BidThree, false},
		{tarokk.BidTwo, false},
		{tarokk.BidOne, true},
		{tarokk.BidSolo, true},
		{tarokk.BidPass, true},
	}
	for _, tt := range tests {
		if ok, _ := CanPlaceBid(player, tt.bidType, history); ok != tt.want {
			t.Errorf("CanPlaceBid(%s) = %v, want %v", tt.bidType, ok, tt.want)
		}
	}
}

// TestCanPlaceBid_Hold はholdの条件（自身の先行ビッドが必要）をテストします。
func TestCanPlaceBid_Hold(t *testing.T) {
	player := playerWithHand(1, tc(tarokk.RankSkiz))

	// ビッド履歴なし: holdできない
	if ok, _ := CanPlaceBid(player, tarokk.BidHold, nil); ok {
		t.Error("Expected hold with no history to be rejected")
	}

	// 他人のビッドのみ: holdできない
	history := []tarokk.Bid{tarokk.NewBid(0, tarokk.BidThree)}
	if ok, _ := CanPlaceBid(player, tarokk.BidHold, history); ok {
		t.Error("Expected hold without own prior bid to be rejected")
	}

	// 自身のビッドの後に他人が上回った: holdできる
	history = []tarokk.Bid{
		tarokk.NewBid(1, tarokk.BidThree),
		tarokk.NewBid(0, tarokk.BidTwo),
	}
	if ok, reason := CanPlaceBid(player, tarokk.BidHold, history); !ok {
		t.Errorf("Expected hold with own prior bid to be accepted, got: %s", reason)
	}
}

// TestIsAuctionComplete はオークション終了条件をテストします。
func TestIsAuctionComplete(t *testing.T) {
	bid := func(pos int, bt tarokk.BidType) tarokk.Bid { return tarokk.NewBid(pos, bt) }

	tests := []struct {
		name    string
		history []tarokk.Bid
		want    bool
	}{
		{"履歴なし", nil, false},
		{"soloで即終了", []tarokk.Bid{bid(0, tarokk.BidSolo)}, true},
		{
			"全員pass",
			[]tarokk.Bid{bid(1, tarokk.BidPass), bid(2, tarokk.BidPass), bid(3, tarokk.BidPass), bid(0, tarokk.BidPass)},
			true,
		},
		{
			"ビッド後に3連続pass",
			[]tarokk.Bid{bid(1, tarokk.BidThree), bid(2, tarokk.BidPass), bid(3, tarokk.BidPass), bid(0, tarokk.BidPass)},
			true,
		},
		{
			"3ビッドのみでは終了しない",
			[]tarokk.Bid{bid(1, tarokk.BidThree), bid(2, tarokk.BidPass), bid(3, tarokk.BidPass)},
			false,
		},
		{
			"passが2連続では終了しない",
			[]tarokk.Bid{bid(1, tarokk.BidThree), bid(2, tarokk.BidTwo), bid(3, tarokk.BidPass), bid(0, tarokk.BidPass)},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAuctionComplete(tt.history); got != tt.want {
				t.Errorf("IsAuctionComplete = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestAuctionDeclarer は宣言者の決定をテストします。
func TestAuctionDeclarer(t *testing.T) {
	history := []tarokk.Bid{
		tarokk.NewBid(1, tarokk.BidThree),
		tarokk.NewBid(2, tarokk.BidTwo),
		tarokk.NewBid(3, tarokk.BidPass),
	}
	declarer := AuctionDeclarer(history)
	if declarer == nil || *declarer != 2 {
		t.Errorf("Expected declarer 2, got %v", declarer)
	}

	allPass := []tarokk.Bid{
		tarokk.NewBid(1, tarokk.BidPass),
		tarokk.NewBid(2, tarokk.BidPass),
		tarokk.NewBid(3, tarokk.BidPass),
		tarokk.NewBid(0, tarokk.BidPass),
	}
	if AuctionDeclarer(allPass) != nil {
		t.Error("Expected no declarer when all players pass")
	}
}

// TestValidBidTypes はビッド候補の提示をテストします。
func TestValidBidTypes(t *testing.T) {
	noHonour := playerWithHand(0, tc("XX"))
	got := ValidBidTypes(noHonour, nil)
	if len(got) != 1 || got[0] != tarokk.BidPass {
		t.Errorf("Expected only pass without honour, got %v", got)
	}

	withHonour := playerWithHand(0, tc(tarokk.RankSkiz))
	got = ValidBidTypes(withHonour, nil)
	if len(got) != 5 {
		t.Errorf("Expected 5 options on fresh auction, got %v", got)
	}

	// 他人がoneをビッド済み: soloのみ上回れる（holdは自身の先行ビッドが必要）
	history := []tarokk.Bid{tarokk.NewBid(1, tarokk.BidOne)}
	got = ValidBidTypes(withHonour, history)
	want := map[tarokk.BidType]bool{tarokk.BidPass: true, tarokk.BidSolo: true}
	if len(got) != len(want) {
		t.Fatalf("Expected %d options, got %v", len(want), got)
	}
	for _, bt := range got {
		if !want[bt] {
			t.Errorf("Unexpected bid option %s", bt)
		}
	}
}
