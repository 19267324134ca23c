// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Maxim Rudenko

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MRudenko/go-budget-sync/internal/config"
	"github.com/MRudenko/go-budget-sync/internal/logger"
	"github.com/MRudenko/go-budget-sync/internal/mock"
	"github.com/MRudenko/go-budget-sync/models"
)

// farFutureCron — расписание, которое гарантированно не сработает за время
// теста (1 января в полночь).
const farFutureCron = "0 0 1 1 *"

func newTestScheduler(t *testing.T, ctrl *gomock.Controller, cfg config.Sync) (*cronScheduler, *mock.MockSyncOrchestrator, *mock.MockSessionManager) {
	t.Helper()

	orchestrator := mock.NewMockSyncOrchestrator(ctrl)
	sessions := mock.NewMockSessionManager(ctrl)

	scheduler, err := NewScheduler(cfg, orchestrator, sessions, logger.Nop())
	require.NoError(t, err)

	return scheduler.(*cronScheduler), orchestrator, sessions
}

// ── NewScheduler ─────────────────────────────────────────────────────────────

func TestNewScheduler_InvalidCronExpression(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := NewScheduler(
		config.Sync{CronExpression: "not a cron"},
		mock.NewMockSyncOrchestrator(ctrl),
		mock.NewMockSessionManager(ctrl),
		logger.Nop(),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "register schedule")
}

func TestNewScheduler_InvalidTimezone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := NewScheduler(
		config.Sync{CronExpression: farFutureCron, Timezone: "Mars/Olympus_Mons"},
		mock.NewMockSyncOrchestrator(ctrl),
		mock.NewMockSessionManager(ctrl),
		logger.Nop(),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load timezone")
}

func TestNewScheduler_ValidTimezone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scheduler, _, _ := newTestScheduler(t, ctrl, config.Sync{
		CronExpression: farFutureCron,
		Timezone:       "Europe/Berlin",
	})
	assert.NotNil(t, scheduler)
}

// ── Start / Stop ─────────────────────────────────────────────────────────────

func TestScheduler_Start_RunOnStartRunsOneCycleSynchronously(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scheduler, orchestrator, _ := newTestScheduler(t, ctrl, config.Sync{
		CronExpression: farFutureCron,
		RunOnStart:     true,
	})

	// ровно один цикл до взведения расписания
	orchestrator.EXPECT().RunCycle(gomock.Any()).Return(models.CycleReport{}, nil).Times(1)

	scheduler.Start()
	scheduler.Stop()
}

func TestScheduler_Start_WithoutRunOnStartDoesNotRunCycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scheduler, _, _ := newTestScheduler(t, ctrl, config.Sync{CronExpression: farFutureCron})

	// RunCycle не ожидается вовсе
	scheduler.Start()
	scheduler.Stop()
}

func TestScheduler_Run_DelegatesToStart(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scheduler, orchestrator, _ := newTestScheduler(t, ctrl, config.Sync{
		CronExpression: farFutureCron,
		RunOnStart:     true,
	})

	orchestrator.EXPECT().RunCycle(gomock.Any()).Return(models.CycleReport{}, nil)

	scheduler.Run()
	scheduler.Stop()
}

// ── tick ─────────────────────────────────────────────────────────────────────

func TestScheduler_Tick_CycleErrorShutsSessionDownAndKeepsDaemonAlive(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scheduler, orchestrator, sessions := newTestScheduler(t, ctrl, config.Sync{CronExpression: farFutureCron})

	report := models.CycleReport{FailedSyncIDs: []string{"b1"}}
	orchestrator.EXPECT().RunCycle(gomock.Any()).Return(report, &CycleError{FailedSyncIDs: []string{"b1"}})
	sessions.EXPECT().Shutdown(gomock.Any())

	// ошибка цикла не должна покидать tick
	assert.NotPanics(t, func() { scheduler.tick() })
}

func TestScheduler_Tick_PanicIsRecovered(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scheduler, orchestrator, sessions := newTestScheduler(t, ctrl, config.Sync{CronExpression: farFutureCron})

	orchestrator.EXPECT().RunCycle(gomock.Any()).DoAndReturn(
		func(context.Context) (models.CycleReport, error) {
			panic("unexpected state")
		})
	sessions.EXPECT().Shutdown(gomock.Any())

	assert.NotPanics(t, func() { scheduler.tick() })
}

func TestScheduler_ScheduledFiresDoNotOverlap(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scheduler, orchestrator, _ := newTestScheduler(t, ctrl, config.Sync{CronExpression: farFutureCron})

	release := make(chan struct{})
	started := make(chan struct{})
	orchestrator.EXPECT().RunCycle(gomock.Any()).DoAndReturn(
		func(context.Context) (models.CycleReport, error) {
			close(started)
			<-release
			return models.CycleReport{}, nil
		}).Times(1)

	// WrappedJob несёт цепочку SkipIfStillRunning — как срабатывание по
	// расписанию
	job := scheduler.cron.Entry(scheduler.entryID).WrappedJob

	done := make(chan struct{})
	go func() {
		job.Run()
		close(done)
	}()
	<-started

	// второй запуск при ещё идущем цикле пропускается, а не ставится в очередь
	job.Run()

	close(release)
	<-done
}

func TestScheduler_Tick_SuccessfulCycleLeavesSessionManagerAlone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	scheduler, orchestrator, _ := newTestScheduler(t, ctrl, config.Sync{CronExpression: farFutureCron})

	// Shutdown не ожидается: успешный цикл сам закрывает свою сессию
	orchestrator.EXPECT().RunCycle(gomock.Any()).Return(models.CycleReport{}, nil)

	scheduler.tick()
}
