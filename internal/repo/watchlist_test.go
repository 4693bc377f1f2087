package repo

import (
	"errors"
	"sync"
	"testing"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type WatchlistRepoSuite struct {
	suite.Suite
	repo WatchlistRepo
}

func (s *WatchlistRepoSuite) SetupTest() {
	s.repo = NewWatchlistRepo(setupTestDB(s.T()))
}

func TestWatchlistRepoSuite(t *testing.T) {
	suite.Run(t, new(WatchlistRepoSuite))
}

func (s *WatchlistRepoSuite) TestAdd_DuplicateAnyCase() {
	for _, variant := range []string{"bitcoin", "BITCOIN", "BitCoin", " bitcoin "} {
		s.Run(variant, func() {
			s.SetupTest()

			_, err := s.repo.Add(testCtx(), "bitcoin", entity.AssetCrypto)
			s.Require().NoError(err)

			_, err = s.repo.Add(testCtx(), variant, entity.AssetCrypto)
			s.ErrorIs(err, ErrDuplicateEntry)

			entries, err := s.repo.List(testCtx())
			s.Require().NoError(err)
			s.Len(entries, 1)
		})
	}
}

func (s *WatchlistRepoSuite) TestAdd_SameSymbolDifferentAssetType() {
	_, err := s.repo.Add(testCtx(), "coin", entity.AssetCrypto)
	s.Require().NoError(err)
	_, err = s.repo.Add(testCtx(), "COIN", entity.AssetStock)
	s.Require().NoError(err)

	entries, err := s.repo.List(testCtx())
	s.Require().NoError(err)
	s.Len(entries, 2)
}

func (s *WatchlistRepoSuite) TestAdd_Canonicalizes() {
	e, err := s.repo.Add(testCtx(), "Apple Inc (aapl)", entity.AssetStock)
	s.Require().NoError(err)
	s.Equal("AAPL", e.Symbol)
	s.Equal("aapl", e.SymbolKey)

	e, err = s.repo.Add(testCtx(), "Ethereum", entity.AssetCrypto)
	s.Require().NoError(err)
	s.Equal("ethereum", e.Symbol)
}

func (s *WatchlistRepoSuite) TestAdd_Invalid() {
	_, err := s.repo.Add(testCtx(), "  ", entity.AssetStock)
	s.ErrorIs(err, ErrInvalidSymbol)

	_, err = s.repo.Add(testCtx(), "AAPL", entity.AssetType("bond"))
	s.ErrorIs(err, ErrInvalidAssetType)
}

func (s *WatchlistRepoSuite) TestList_InsertionOrder() {
	for _, sym := range []string{"bitcoin", "AAPL", "ethereum", "MSFT"} {
		at := entity.AssetStock
		if sym == "bitcoin" || sym == "ethereum" {
			at = entity.AssetCrypto
		}
		_, err := s.repo.Add(testCtx(), sym, at)
		s.Require().NoError(err)
	}

	entries, err := s.repo.List(testCtx())
	s.Require().NoError(err)
	s.Equal([]string{"bitcoin", "AAPL", "ethereum", "MSFT"}, lo.Map(entries, func(e entity.WatchlistEntry, _ int) string {
		return e.Symbol
	}))
}

func (s *WatchlistRepoSuite) TestRemove() {
	_, err := s.repo.Add(testCtx(), "AAPL", entity.AssetStock)
	s.Require().NoError(err)

	s.ErrorIs(s.repo.Remove(testCtx(), "TSLA"), ErrNotFound)
	s.NoError(s.repo.Remove(testCtx(), "aapl"))
	s.ErrorIs(s.repo.Remove(testCtx(), "AAPL"), ErrNotFound)

	entries, err := s.repo.List(testCtx())
	s.Require().NoError(err)
	s.Empty(entries)
}

func (s *WatchlistRepoSuite) TestClear() {
	s.NoError(s.repo.Clear(testCtx()), "clearing an empty list succeeds")

	_, err := s.repo.Add(testCtx(), "AAPL", entity.AssetStock)
	s.Require().NoError(err)
	_, err = s.repo.Add(testCtx(), "bitcoin", entity.AssetCrypto)
	s.Require().NoError(err)

	s.NoError(s.repo.Clear(testCtx()))
	entries, err := s.repo.List(testCtx())
	s.Require().NoError(err)
	s.Empty(entries)
}

func TestWatchlistRepo_ConcurrentAdd(t *testing.T) {
	repo := NewWatchlistRepo(setupTestDB(t))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		okCnt    int
		dupCnt   int
		otherErr []error
	)
	for _, sym := range []string{"solana", "SOLANA", "Solana", "solana", "sOlAnA", "SOLana"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Add(testCtx(), sym, entity.AssetCrypto)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				okCnt++
			case errors.Is(err, ErrDuplicateEntry):
				dupCnt++
			default:
				otherErr = append(otherErr, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, otherErr)
	assert.Equal(t, 1, okCnt)
	assert.Equal(t, 5, dupCnt)
}
