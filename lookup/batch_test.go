package lookup

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/cloud66-oss/geotrace/provider"
	"github.com/cloud66-oss/geotrace/utils"
)

type batchTestSuite struct {
	lookupTestSuite
}

// seedBatchInputs registers one mocked lookup per input with a short
// random delay, so completions land out of submission order.
func (suite *batchTestSuite) seedBatchInputs(count int) []string {
	inputs := make([]string, count)
	for i := range inputs {
		ip := fmt.Sprintf("10.0.%d.%d", i/256, i%256)
		inputs[i] = ip

		suite.local.On("Lookup", mock.Anything, ip).
			Run(func(args mock.Arguments) {
				time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
			}).
			Return(localResult(ip), nil)
	}

	return inputs
}

func (suite *batchTestSuite) TestBatchResultsAreIndexStable() {
	lookuper := suite.newLookuper(Config{Provider: provider.NameLocal, Concurrency: 8})
	inputs := suite.seedBatchInputs(40)

	results := lookuper.Batch(context.Background(), inputs)

	suite.Require().Len(results, len(inputs))
	for i, result := range results {
		suite.Require().NotNil(result)
		suite.Equal(inputs[i], result.Input)
		suite.Equal(inputs[i], result.IP)
	}
}

func (suite *batchTestSuite) TestBatchWithSingleWorker() {
	lookuper := suite.newLookuper(Config{Provider: provider.NameLocal, Concurrency: 1})
	inputs := suite.seedBatchInputs(5)

	results := lookuper.Batch(context.Background(), inputs)

	suite.Require().Len(results, len(inputs))
	for i, result := range results {
		suite.Equal(inputs[i], result.Input)
	}
}

func (suite *batchTestSuite) TestBatchProgressIsMonotonic() {
	var counts []int
	var totals []int

	lookuper := suite.newLookuper(Config{
		Provider:    provider.NameLocal,
		Concurrency: 8,
		OnProgress: func(completed, total int) {
			counts = append(counts, completed)
			totals = append(totals, total)
		},
	})
	inputs := suite.seedBatchInputs(30)

	lookuper.Batch(context.Background(), inputs)

	suite.Require().Len(counts, len(inputs))
	for i, count := range counts {
		suite.Equal(i+1, count)
		suite.Equal(len(inputs), totals[i])
	}
	suite.Equal(len(inputs), counts[len(counts)-1])
}

func (suite *batchTestSuite) TestBatchIsolatesFailures() {
	lookuper := suite.newLookuper(Config{Provider: provider.NameLocal, Concurrency: 4})

	suite.local.On("Lookup", mock.Anything, "10.0.0.1").Return(localResult("10.0.0.1"), nil)
	suite.local.On("Lookup", mock.Anything, "10.0.0.2").Return(nil, &utils.RecordNotFoundError{IP: "10.0.0.2"})
	suite.local.On("Lookup", mock.Anything, "10.0.0.3").Return(localResult("10.0.0.3"), nil)

	results := lookuper.Batch(context.Background(), []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"})

	suite.Require().Len(results, 3)
	suite.Empty(results[0].Error)
	suite.NotEmpty(results[1].Error)
	suite.Contains(results[1].Error, "10.0.0.2")
	suite.Empty(results[2].Error)
}

func (suite *batchTestSuite) TestBatchEmptyInput() {
	lookuper := suite.newLookuper(Config{Provider: provider.NameLocal})

	results := lookuper.Batch(context.Background(), []string{})

	suite.Empty(results)
}

func TestBatchTestSuite(t *testing.T) {
	suite.Run(t, new(batchTestSuite))
}
