package capability_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"fhir-server/internal/capability"
	"fhir-server/internal/capability/mocks"
	"fhir-server/pkg/domain"
	"fhir-server/pkg/platform/sentinel"
)

// =============================================================================
// Builder Test Suite
// =============================================================================
// The builder owns the statement during a pass: updates must run in queue
// order, failures must abort without a partial statement.

type BuilderSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	resolver *mocks.MockResolver
}

func TestBuilderSuite(t *testing.T) {
	suite.Run(t, new(BuilderSuite))
}

func (s *BuilderSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.resolver = mocks.NewMockResolver(s.ctrl)
}

func (s *BuilderSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *BuilderSuite) expectResolve(op string) *gomock.Call {
	u, err := url.Parse("https://fhir.example.com/OperationDefinition/" + op)
	s.Require().NoError(err)
	return s.resolver.EXPECT().ResolveOperationDefinitionURL(op).Return(u, nil)
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *BuilderSuite) TestNew() {
	s.Run("nil resolver returns error", func() {
		_, err := capability.NewBuilder(nil)
		s.Error(err)
		s.Contains(err.Error(), "resolver is required")
	})

	s.Run("valid resolver returns builder", func() {
		b, err := capability.NewBuilder(s.resolver)
		s.NoError(err)
		s.Equal(0, b.Len())
	})
}

// =============================================================================
// Build Tests
// =============================================================================

func (s *BuilderSuite) TestBuild() {
	s.Run("empty resource type aborts before resolving", func() {
		b, err := capability.NewBuilder(s.resolver)
		s.Require().NoError(err)
		b.Update("export", capability.ResourceOperation("patient-export", ""))

		stmt, err := b.Build()
		s.Nil(stmt)
		s.Require().Error(err)
		s.Contains(err.Error(), "resource type is required")
	})

	s.Run("malformed resource type aborts", func() {
		b, err := capability.NewBuilder(s.resolver)
		s.Require().NoError(err)
		b.Update("export", capability.ResourceOperation("patient-export", domain.ResourceType("Patient/1")))

		stmt, err := b.Build()
		s.Nil(stmt)
		s.Error(err)
	})

	s.Run("empty queue builds empty statement", func() {
		b, err := capability.NewBuilder(s.resolver)
		s.Require().NoError(err)

		stmt, err := b.Build()
		s.Require().NoError(err)
		s.Empty(stmt.Operations)
		s.Empty(stmt.Resources)
	})

	s.Run("applies updates in queue order", func() {
		gomock.InOrder(
			s.expectResolve("export"),
			s.expectResolve("patient-export"),
			s.expectResolve("reindex"),
		)

		b, err := capability.NewBuilder(s.resolver)
		s.Require().NoError(err)
		b.Update("export",
			capability.ServerOperation("export"),
			capability.ResourceOperation("patient-export", domain.ResourceTypePatient),
		)
		b.Update("reindex", capability.ServerOperation("reindex"))
		s.Equal(3, b.Len())

		stmt, err := b.Build()
		s.Require().NoError(err)
		s.Equal([]string{"export", "reindex"}, stmt.ServerOperationNames())
		s.Require().Len(stmt.Resources, 1)
		s.Equal("https://fhir.example.com/OperationDefinition/patient-export", stmt.Resources[0].Operations[0].Definition)
	})

	s.Run("nil updates are ignored", func() {
		b, err := capability.NewBuilder(s.resolver)
		s.Require().NoError(err)
		b.Update("noop", nil)
		s.Equal(0, b.Len())
	})

	s.Run("resolver failure aborts without statement", func() {
		s.expectResolve("export")
		s.resolver.EXPECT().ResolveOperationDefinitionURL("bogus").Return(nil, sentinel.ErrNotFound)

		b, err := capability.NewBuilder(s.resolver)
		s.Require().NoError(err)
		b.Update("export", capability.ServerOperation("export"))
		b.Update("broken", capability.ServerOperation("bogus"))
		b.Update("never", func(*capability.Statement, capability.Resolver) error {
			s.Fail("update after failure must not run")
			return nil
		})

		stmt, err := b.Build()
		s.Nil(stmt)
		s.True(capability.IsResolutionError(err))
		s.ErrorIs(err, sentinel.ErrNotFound)
		s.Contains(err.Error(), "broken")
	})

	s.Run("update error is propagated", func() {
		boom := errors.New("boom")
		b, err := capability.NewBuilder(s.resolver)
		s.Require().NoError(err)
		b.Update("custom", func(*capability.Statement, capability.Resolver) error { return boom })

		_, err = b.Build()
		s.ErrorIs(err, boom)
	})

	s.Run("duplicate sections fail validation", func() {
		b, err := capability.NewBuilder(s.resolver)
		s.Require().NoError(err)
		b.Update("rogue", func(stmt *capability.Statement, _ capability.Resolver) error {
			stmt.Resources = append(stmt.Resources,
				capability.Resource{Type: domain.ResourceTypeGroup},
				capability.Resource{Type: "group"},
			)
			return nil
		})

		stmt, err := b.Build()
		s.Nil(stmt)
		s.True(capability.IsMergeError(err))
	})

	s.Run("each build starts from an empty statement", func() {
		s.expectResolve("export").Times(2)

		b, err := capability.NewBuilder(s.resolver)
		s.Require().NoError(err)
		b.Update("export", capability.ServerOperation("export"))

		first, err := b.Build()
		s.Require().NoError(err)
		second, err := b.Build()
		s.Require().NoError(err)
		s.NotSame(first, second)
		s.Len(second.Operations, 1)
	})
}
