package board_test

import (
	"testing"

	"go.uber.org/zap/zapcore"
	"go.viam.com/test"

	"go.viam.com/peripherals/components/board"
	"go.viam.com/peripherals/components/board/fake"
	"go.viam.com/peripherals/logging"
)

func TestRuntime(t *testing.T) {
	logger := logging.NewTestLogger(t)

	t.Run("initialise failure", func(t *testing.T) {
		p := fake.New()
		p.Fail(fake.OpInitialise, -1)
		rt, err := board.NewRuntime(p, logger)
		test.That(t, rt, test.ShouldBeNil)
		test.That(t, board.IsCategory(err, board.CategoryGPIO), test.ShouldBeTrue)
		test.That(t, err.Error(), test.ShouldContainSubstring, "initialising hardware runtime")
	})

	t.Run("terminate waits for every guard", func(t *testing.T) {
		p := fake.New()
		rt, err := board.NewRuntime(p, logger)
		test.That(t, err, test.ShouldBeNil)

		g1, err := rt.Acquire("one")
		test.That(t, err, test.ShouldBeNil)
		g2, err := rt.Acquire("two")
		test.That(t, err, test.ShouldBeNil)
		test.That(t, rt.Open(), test.ShouldEqual, 2)

		err = rt.Close()
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "2 peripherals still open")
		test.That(t, p.Terminated(), test.ShouldBeFalse)

		g1.Close()
		g2.Close()
		g2.Close()
		test.That(t, rt.Open(), test.ShouldEqual, 0)

		test.That(t, rt.Close(), test.ShouldBeNil)
		test.That(t, p.Terminated(), test.ShouldBeTrue)
		test.That(t, rt.Close(), test.ShouldBeNil)

		_, err = rt.Acquire("late")
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestGuard(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	rt, err := board.NewRuntime(fake.New(), logger)
	test.That(t, err, test.ShouldBeNil)

	g, err := rt.Acquire("thing")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.Name(), test.ShouldEqual, "thing")

	var order []string
	g.OnRelease(board.CategoryGPIO, "first", func() int {
		order = append(order, "first")
		return 0
	})
	g.OnRelease(board.CategoryGPIO, "second", func() int {
		order = append(order, "second")
		return -25
	})
	g.OnRelease(board.CategorySensor, "third", func() int {
		order = append(order, "third")
		return 1
	})

	g.Close()
	test.That(t, g.Closed(), test.ShouldBeTrue)
	test.That(t, order, test.ShouldResemble, []string{"third", "second", "first"})

	g.Close()
	test.That(t, order, test.ShouldHaveLength, 3)

	warnings := logs.FilterLevelExact(zapcore.WarnLevel).All()
	test.That(t, warnings, test.ShouldHaveLength, 1)
	test.That(t, warnings[0].ContextMap()["step"], test.ShouldEqual, "second")
	test.That(t, rt.Close(), test.ShouldBeNil)
}

func TestHandle(t *testing.T) {
	test.That(t, board.Handle(0).Valid(), test.ShouldBeTrue)
	test.That(t, board.Handle(7).Valid(), test.ShouldBeTrue)
	test.That(t, board.Handle(-1).Valid(), test.ShouldBeFalse)
	test.That(t, board.SPIFlags(false), test.ShouldEqual, uint(0))
	test.That(t, board.SPIFlags(true), test.ShouldEqual, uint(256))
}
