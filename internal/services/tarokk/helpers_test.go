package tarokk

import (
	"testing"

	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/models/tarokk"
)

// テスト用のカード生成ヘルパーです。IDは決定的な文字列にします。
func tc(rank string) tarokk.Card {
	points := 1
	typ := tarokk.CardTypeTarokk
	if rank == tarokk.RankSkiz || rank == tarokk.RankXXI || rank == tarokk.RankPagat {
		points = 5
		typ = tarokk.CardTypeHonour
	}
	return tarokk.Card{ID: "t-" + rank, Suit: tarokk.SuitTarokk, Rank: rank, Points: points, Type: typ}
}

func sc(suit tarokk.Suit, rank string) tarokk.Card {
	points := map[string]int{
		tarokk.RankKing:     5,
		tarokk.RankQueen:    4,
		tarokk.RankCavalier: 3,
		tarokk.RankJack:     2,
		tarokk.RankTen:      1,
	}[rank]
	typ := tarokk.CardTypeSuit
	if rank == tarokk.RankKing {
		typ = tarokk.CardTypeKing
	}
	return tarokk.Card{ID: string(suit) + "-" + rank, Suit: suit, Rank: rank, Points: points, Type: typ}
}

func cardIDs(cards []tarokk.Card) []string {
	ids := make([]string, 0, len(cards))
	for _, c := range cards {
		ids = append(ids, c.ID)
	}
	return ids
}

// newSeatedGame は4人が着席した待機状態のゲームを作成します。
func newSeatedGame(t *testing.T) *GameState {
	t.Helper()
	g := NewGameState()
	for i, name := range []string{"alice", "bob", "carol", "dave"} {
		if err := g.AddPlayer(tarokk.NewPlayer("", name, i)); err != nil {
			t.Fatalf("AddPlayer failed: %v", err)
		}
	}
	return g
}

// dealFixedHands は決定的な手札を配ります。ディーラーは席0です。
// 42枚すべてを使用し、各手札は9枚、タロンは6枚です。
//
//	席0: XX XIX XVIII XVII + ハート K Q C J 10          （オナーなし）
//	席1: skiz XXI XVI XV XIV XIII XII + ダイヤ K Q      （ビッド可能）
//	席2: I XI X IX VIII + スペード K Q C J              （パガート持ち）
//	席3: VII VI V IV III II + クラブ K Q C
//	タロン: ダイヤ C J 10, スペード 10, クラブ J 10
func dealFixedHands(g *GameState) {
	h := tarokk.SuitHearts
	d := tarokk.SuitDiamonds
	s := tarokk.SuitSpades
	c := tarokk.SuitClubs

	g.Phase = PhaseDealing
	g.DealerPosition = 0
	for _, p := range g.Players {
		p.ResetForNewHand()
	}

	g.Players[0].Hand = []tarokk.Card{
		tc("XX"), tc("XIX"), tc("XVIII"), tc("XVII"),
		sc(h, tarokk.RankKing), sc(h, tarokk.RankQueen), sc(h, tarokk.RankCavalier), sc(h, tarokk.RankJack), sc(h, tarokk.RankTen),
	}
	g.Players[1].Hand = []tarokk.Card{
		tc(tarokk.RankSkiz), tc(tarokk.RankXXI), tc("XVI"), tc("XV"), tc("XIV"), tc("XIII"), tc("XII"),
		sc(d, tarokk.RankKing), sc(d, tarokk.RankQueen),
	}
	g.Players[2].Hand = []tarokk.Card{
		tc(tarokk.RankPagat), tc("XI"), tc("X"), tc("IX"), tc("VIII"),
		sc(s, tarokk.RankKing), sc(s, tarokk.RankQueen), sc(s, tarokk.RankCavalier), sc(s, tarokk.RankJack),
	}
	g.Players[3].Hand = []tarokk.Card{
		tc("VII"), tc("VI"), tc("V"), tc("IV"), tc("III"), tc("II"),
		sc(c, tarokk.RankKing), sc(c, tarokk.RankQueen), sc(c, tarokk.RankCavalier),
	}
	g.Talon = []tarokk.Card{
		sc(d, tarokk.RankCavalier), sc(d, tarokk.RankJack), sc(d, tarokk.RankTen),
		sc(s, tarokk.RankTen), sc(c, tarokk.RankJack), sc(c, tarokk.RankTen),
	}
}

// advanceToBidding は決定的な手札でビッドフェーズまで進めます。
func advanceToBidding(t *testing.T) *GameState {
	t.Helper()
	g := newSeatedGame(t)
	dealFixedHands(g)
	g.StartBidding()
	return g
}

// advanceToAnnouncements はビッド（席1がthree）・タロン分配・捨て札・
// パートナーコール（XX指名 → 席0）まで進めます。
func advanceToAnnouncements(t *testing.T) *GameState {
	t.Helper()
	g := advanceToBidding(t)

	for _, step := range []struct {
		pos int
		bid tarokk.BidType
	}{
		{1, tarokk.BidThree},
		{2, tarokk.BidPass},
		{3, tarokk.BidPass},
		{0, tarokk.BidPass},
	} {
		if _, err := g.PlaceBid(step.pos, step.bid); err != nil {
			t.Fatalf("PlaceBid(%d, %s) failed: %v", step.pos, step.bid, err)
		}
	}
	if g.Phase != PhaseTalonDistribution {
		t.Fatalf("Expected phase %s, got %s", PhaseTalonDistribution, g.Phase)
	}

	if _, err := g.DistributeTalon(); err != nil {
		t.Fatalf("DistributeTalon failed: %v", err)
	}

	// タロン分配後の枚数: 宣言者（席1）は3枚取って12枚、他は1枚ずつで10枚。
	// 捨て札: 手番はディーラーの右（席1）から
	discards := map[int][]string{
		1: {"diamonds-C", "diamonds-J", "diamonds-10"},
		2: {"spades-J"},
		3: {"clubs-C"},
		0: {"hearts-J"},
	}
	for _, pos := range []int{1, 2, 3, 0} {
		if _, err := g.DiscardCards(pos, discards[pos]); err != nil {
			t.Fatalf("DiscardCards(%d) failed: %v", pos, err)
		}
	}
	if g.Phase != PhasePartnerCall {
		t.Fatalf("Expected phase %s, got %s", PhasePartnerCall, g.Phase)
	}

	if err := g.CallPartner(1, "XX"); err != nil {
		t.Fatalf("CallPartner failed: %v", err)
	}
	return g
}

// advanceToPlaying は全員が宣言をパスしてトリックテイキングまで進めます。
func advanceToPlaying(t *testing.T) *GameState {
	t.Helper()
	g := advanceToAnnouncements(t)
	for _, pos := range []int{1, 2, 3} {
		if _, err := g.PassAnnouncement(pos); err != nil {
			t.Fatalf("PassAnnouncement(%d) failed: %v", pos, err)
		}
	}
	if g.Phase != PhasePlaying {
		t.Fatalf("Expected phase %s, got %s", PhasePlaying, g.Phase)
	}
	return g
}
