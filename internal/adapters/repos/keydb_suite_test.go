package repos_test

import (
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/architeacher/connectors/internal/config"
	"github.com/architeacher/connectors/internal/infrastructure"
	"github.com/architeacher/connectors/pkg/logger"
)

// keydbSuite starts a fresh miniredis per test.
type keydbSuite struct {
	suite.Suite
	miniRedis   *miniredis.Miniredis
	keydbClient *infrastructure.KeydbClient
}

func (s *keydbSuite) SetupTest() {
	var err error
	s.miniRedis, err = miniredis.Run()
	s.Require().NoError(err)

	cfg := config.Cache{
		Address:       s.miniRedis.Addr(),
		PoolSize:      5,
		DialTimeout:   time.Second,
		ReadTimeout:   time.Second,
		WriteTimeout:  time.Second,
		DefaultExpiry: time.Hour,
	}

	s.keydbClient = infrastructure.NewKeyDBClient(cfg, logger.NewTestLogger())
}

func (s *keydbSuite) TearDownTest() {
	if s.keydbClient != nil {
		_ = s.keydbClient.Close()
	}

	if s.miniRedis != nil {
		s.miniRedis.Close()
	}
}
