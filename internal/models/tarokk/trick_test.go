package tarokk

import (
	"testing"
)

func tarokkCard(rank string) Card {
	points := 1
	typ := CardTypeTarokk
	if rank == RankSkiz || rank == RankXXI || rank == RankPagat {
		points = 5
		typ = CardTypeHonour
	}
	return Card{ID: "t-" + rank, Suit: SuitTarokk, Rank: rank, Points: points, Type: typ}
}

func suitCard(suit Suit, rank string) Card {
	points := map[string]int{RankKing: 5, RankQueen: 4, RankCavalier: 3, RankJack: 2, RankTen: 1}[rank]
	typ := CardTypeSuit
	if rank == RankKing {
		typ = CardTypeKing
	}
	return Card{ID: string(suit) + "-" + rank, Suit: suit, Rank: rank, Points: points, Type: typ}
}

// TestResolveTrickWinner はトリック勝者の決定ルールをテストします。
func TestResolveTrickWinner(t *testing.T) {
	tests := []struct {
		name   string
		plays  []TrickPlay
		winner int
	}{
		{
			name: "リードスートの最強カードが勝つ",
			plays: []TrickPlay{
				{PlayerPosition: 0, Card: suitCard(SuitHearts, RankJack)},
				{PlayerPosition: 1, Card: suitCard(SuitHearts, RankKing)},
				{PlayerPosition: 2, Card: suitCard(SuitHearts, RankTen)},
				{PlayerPosition: 3, Card: suitCard(SuitHearts, RankQueen)},
			},
			winner: 1,
		},
		{
			name: "スート違いの強いカードは勝てない",
			plays: []TrickPlay{
				{PlayerPosition: 0, Card: suitCard(SuitHearts, RankTen)},
				{PlayerPosition: 1, Card: suitCard(SuitSpades, RankKing)},
				{PlayerPosition: 2, Card: suitCard(SuitClubs, RankKing)},
				{PlayerPosition: 3, Card: suitCard(SuitHearts, RankJack)},
			},
			winner: 3,
		},
		{
			name: "タロックはリードスートに勝つ",
			plays: []TrickPlay{
				{PlayerPosition: 0, Card: suitCard(SuitHearts, RankKing)},
				{PlayerPosition: 1, Card: tarokkCard("II")},
				{PlayerPosition: 2, Card: suitCard(SuitHearts, RankQueen)},
				{PlayerPosition: 3, Card: suitCard(SuitHearts, RankJack)},
			},
			winner: 1,
		},
		{
			name: "複数のタロックでは最強のタロックが勝つ",
			plays: []TrickPlay{
				{PlayerPosition: 0, Card: tarokkCard("V")},
				{PlayerPosition: 1, Card: tarokkCard(RankXXI)},
				{PlayerPosition: 2, Card: tarokkCard(RankSkiz)},
				{PlayerPosition: 3, Card: tarokkCard("XX")},
			},
			winner: 2,
		},
		{
			name: "パガートは数字タロックに負ける",
			plays: []TrickPlay{
				{PlayerPosition: 0, Card: tarokkCard(RankPagat)},
				{PlayerPosition: 1, Card: tarokkCard("II")},
				{PlayerPosition: 2, Card: suitCard(SuitClubs, RankTen)},
				{PlayerPosition: 3, Card: suitCard(SuitClubs, RankKing)},
			},
			winner: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveTrickWinner(tt.plays)
			if got.PlayerPosition != tt.winner {
				t.Errorf("Expected winner %d, got %d", tt.winner, got.PlayerPosition)
			}
		})
	}
}

// TestTrickRecord_Cards はトリック記録から出された順のカード列が取れることをテストします。
func TestTrickRecord_Cards(t *testing.T) {
	record := TrickRecord{
		Number: 1,
		Plays: []TrickPlay{
			{PlayerPosition: 2, Card: tarokkCard("X")},
			{PlayerPosition: 3, Card: tarokkCard("XI")},
			{PlayerPosition: 0, Card: tarokkCard("XII")},
			{PlayerPosition: 1, Card: tarokkCard(RankPagat)},
		},
		WinnerPosition: 0,
	}

	cards := record.Cards()
	if len(cards) != 4 {
		t.Fatalf("Expected 4 cards, got %d", len(cards))
	}
	if cards[0].Rank != "X" || cards[3].Rank != RankPagat {
		t.Error("Expected cards in play order")
	}
	if got := TotalPoints(cards); got != 8 {
		t.Errorf("Expected trick points 8, got %d", got)
	}
}
