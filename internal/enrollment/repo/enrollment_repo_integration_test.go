//go:build integration

package repo_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/biometric/entity"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/enrollment/repo"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/testutil"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/testutil/containers"
)

type PostgresRepoSuite struct {
	suite.Suite
	pg   *containers.PostgresContainer
	repo *repo.EnrollmentRepo
}

func TestPostgresRepoSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration tests in short mode")
	}
	suite.Run(t, new(PostgresRepoSuite))
}

func (s *PostgresRepoSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.repo = repo.NewEnrollmentRepo(s.pg.DB)
	s.Require().NoError(s.repo.EnsureTables(context.Background()))
	s.Require().NoError(s.repo.EnsureTables(context.Background()))
}

func (s *PostgresRepoSuite) SetupTest() {
	_, err := s.pg.DB.Exec(`TRUNCATE enrolled_identities RESTART IDENTITY CASCADE`)
	s.Require().NoError(err)
}

func (s *PostgresRepoSuite) count(table string) int {
	var n int
	s.Require().NoError(s.pg.DB.Get(&n, "SELECT COUNT(*) FROM "+table))
	return n
}

func (s *PostgresRepoSuite) TestRoundTrip() {
	ctx := context.Background()
	res, err := s.repo.Save(ctx, "Alice", "ID-001", testutil.FullPayload("alice"))
	s.Require().NoError(err)
	s.Equal(int64(1), res.ID)

	identities, err := s.repo.ListIdentities(ctx)
	s.Require().NoError(err)
	s.Require().Len(identities, 1)
	for _, slot := range entity.TemplateSlots {
		s.Equal(testutil.TemplateBytes("alice", slot), identities[0].Templates[slot])
	}
	images, err := s.repo.GetImages(ctx, res.ID)
	s.Require().NoError(err)
	for _, slot := range entity.ImageSlots {
		s.Equal(testutil.ImageBytes("alice", slot), images[slot])
	}
}

func (s *PostgresRepoSuite) TestConcurrentDuplicates() {
	ctx := context.Background()
	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.repo.Save(ctx, fmt.Sprintf("Racer %d", i), "ID-RACE", testutil.FullPayload("race"))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		s.ErrorIs(err, apperr.ErrDuplicateIdentity)
	}
	s.Equal(1, ok)
	s.Equal(1, s.count("enrolled_identities"))
	s.Equal(1, s.count("fingerprint_images"))
}

func (s *PostgresRepoSuite) TestDeleteCascades() {
	ctx := context.Background()
	res, err := s.repo.Save(ctx, "Bob", "ID-002", testutil.FullPayload("bob"))
	s.Require().NoError(err)

	s.Require().NoError(s.repo.Delete(ctx, res.ID))
	s.Equal(0, s.count("fingerprint_images"))
	s.ErrorIs(s.repo.Delete(ctx, res.ID), apperr.ErrNotFound)
}
