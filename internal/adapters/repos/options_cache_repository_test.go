package repos_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/architeacher/connectors/internal/adapters/repos"
	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/ports"
	"github.com/architeacher/connectors/internal/usecases/queries"
	"github.com/architeacher/connectors/pkg/logger"
)

type OptionsCacheRepositoryTestSuite struct {
	keydbSuite
	repo *repos.OptionsCacheRepository
}

func TestOptionsCacheRepositoryTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(OptionsCacheRepositoryTestSuite))
}

func (s *OptionsCacheRepositoryTestSuite) SetupTest() {
	s.keydbSuite.SetupTest()
	s.repo = repos.NewOptionsCacheRepository(s.keydbClient, logger.NewTestLogger())
}

func countriesKey(credential string) ports.OptionsKey {
	return ports.OptionsKey{
		Node:       "magento2",
		Method:     "getCountries",
		Credential: credential,
		Params:     model.Params{"resource": "customer"},
	}
}

func (s *OptionsCacheRepositoryTestSuite) TestMiss() {
	result, err := s.repo.GetOptions(s.T().Context(), countriesKey("shop"))
	s.Require().NoError(err)
	s.Require().False(result.Hit)
	s.Require().Nil(result.Data)
	s.Require().True(strings.HasPrefix(result.Key, "options:v1:magento2:getCountries:"))
}

func (s *OptionsCacheRepositoryTestSuite) TestSetAndGet() {
	ctx := s.T().Context()
	options := []model.Option{{Name: "Germany", Value: "DE"}, {Name: "Spain", Value: "ES"}}

	s.Require().NoError(s.repo.SetOptions(ctx, countriesKey("shop"), options, time.Minute))

	result, err := s.repo.GetOptions(ctx, countriesKey("shop"))
	s.Require().NoError(err)
	s.Require().True(result.Hit)
	s.Require().Equal(options, result.Data)
	s.Require().Positive(result.TTL)
}

func (s *OptionsCacheRepositoryTestSuite) TestEmptyListIsAHit() {
	ctx := s.T().Context()

	s.Require().NoError(s.repo.SetOptions(ctx, countriesKey("shop"), nil, time.Minute))

	result, err := s.repo.GetOptions(ctx, countriesKey("shop"))
	s.Require().NoError(err)
	s.Require().True(result.Hit)
	s.Require().Empty(result.Data)
}

func (s *OptionsCacheRepositoryTestSuite) TestKeysAreScopedPerCredential() {
	ctx := s.T().Context()

	s.Require().NoError(s.repo.SetOptions(ctx, countriesKey("shop"), []model.Option{{Name: "a", Value: "a"}}, time.Minute))

	result, err := s.repo.GetOptions(ctx, countriesKey("other"))
	s.Require().NoError(err)
	s.Require().False(result.Hit)

	for _, key := range s.miniRedis.Keys() {
		s.Require().NotContains(key, "shop")
	}
}

func (s *OptionsCacheRepositoryTestSuite) TestExpiry() {
	ctx := s.T().Context()

	s.Require().NoError(s.repo.SetOptions(ctx, countriesKey("shop"), []model.Option{{Name: "a", Value: "a"}}, time.Minute))
	s.miniRedis.FastForward(2 * time.Minute)

	result, err := s.repo.GetOptions(ctx, countriesKey("shop"))
	s.Require().NoError(err)
	s.Require().False(result.Hit)
}

func (s *OptionsCacheRepositoryTestSuite) TestInvalidateNode() {
	ctx := s.T().Context()
	freshservice := ports.OptionsKey{Node: "freshservice", Method: "getAgents", Credential: "desk"}

	s.Require().NoError(s.repo.SetOptions(ctx, countriesKey("shop"), []model.Option{{Name: "a", Value: "a"}}, time.Minute))
	s.Require().NoError(s.repo.SetOptions(ctx, countriesKey("other"), []model.Option{{Name: "b", Value: "b"}}, time.Minute))
	s.Require().NoError(s.repo.SetOptions(ctx, freshservice, []model.Option{{Name: "c", Value: "c"}}, time.Minute))

	s.Require().NoError(s.repo.InvalidateNode(ctx, "magento2"))

	result, err := s.repo.GetOptions(ctx, countriesKey("shop"))
	s.Require().NoError(err)
	s.Require().False(result.Hit)

	result, err = s.repo.GetOptions(ctx, freshservice)
	s.Require().NoError(err)
	s.Require().True(result.Hit)
}

func (s *OptionsCacheRepositoryTestSuite) TestGetCorruptedEntry() {
	ctx := s.T().Context()

	result, err := s.repo.GetOptions(ctx, countriesKey("shop"))
	s.Require().NoError(err)
	s.Require().NoError(s.miniRedis.Set(result.Key, "not json"))

	_, err = s.repo.GetOptions(ctx, countriesKey("shop"))
	s.Require().Error(err)
}

func (s *OptionsCacheRepositoryTestSuite) TestQueryCacheAdapter() {
	ctx := s.T().Context()
	adapter := repos.NewLoadOptionsCacheAdapter(s.repo)
	query := queries.LoadOptionsQuery{
		Node:       "magento2",
		Method:     "getCountries",
		Credential: "shop",
		Params:     model.Params{"resource": "customer"},
	}

	_, hit, err := adapter.Get(ctx, query)
	s.Require().NoError(err)
	s.Require().False(hit)

	options := []model.Option{{Name: "Germany", Value: "DE"}}
	s.Require().NoError(adapter.Set(ctx, query, options, time.Minute))

	cached, hit, err := adapter.Get(ctx, query)
	s.Require().NoError(err)
	s.Require().True(hit)
	s.Require().Equal(options, cached)

	// Refresh only bypasses the cache; it does not change the key.
	query.Refresh = true
	_, hit, err = adapter.Get(ctx, query)
	s.Require().NoError(err)
	s.Require().True(hit)
}
