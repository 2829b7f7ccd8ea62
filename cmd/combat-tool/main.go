package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/config"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/dice"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/domain/conditions"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/notify"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/prompts"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/repositories/battlestate"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/repositories/templatestore"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/services/encounter"
	"github.com/tianyouyingfan/local-simple-dnd-tool/internal/uuid"
)

// stdinBroker answers engine prompts from the terminal
type stdinBroker struct {
	scanner *bufio.Scanner
}

func (b *stdinBroker) Ask(ctx context.Context, p *prompts.Prompt) (bool, error) {
	fmt.Printf("\n== %s ==\n%s\n[y] %s / [n] %s: ", p.Title, p.Message, p.YesText, p.NoText)
	for b.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(b.scanner.Text())) {
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Print("please answer y or n: ")
	}
	return false, b.scanner.Err()
}

// stdoutSink prints transient operator messages
type stdoutSink struct{}

func (stdoutSink) Toast(message string) {
	fmt.Printf("* %s\n", message)
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	gen := uuid.NewGoogleUUIDGenerator()

	var repo battlestate.Repository
	var store templatestore.Store

	if cfg.Redis.Addr != "" {
		log.Printf("Connecting to Redis at %s", cfg.Redis.Addr)
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Printf("Redis unavailable (%v), falling back to in-memory storage", err)
		} else {
			repo = battlestate.NewRedisRepository(redisClient, gen)
			store, err = templatestore.NewRedisStore(ctx, redisClient, gen)
			if err != nil {
				log.Fatalf("Failed to initialize template store: %v", err)
			}
		}
	}

	if repo == nil {
		repo = battlestate.NewInMemoryRepository(gen)
		if store, err = templatestore.NewInMemoryStore(gen); err != nil {
			log.Fatalf("Failed to initialize template store: %v", err)
		}
	}

	scanner := bufio.NewScanner(os.Stdin)
	queue := notify.NewQueue(64)

	svc := encounter.NewService(&encounter.ServiceConfig{
		Repository:      repo,
		TemplateStore:   store,
		Broker:          &stdinBroker{scanner: scanner},
		Notifier:        queue,
		LogSink:         stdoutSink{},
		UUIDGenerator:   gen,
		AutoApplyDamage: cfg.Engine.AutoApplyDamage,
	})

	enc, err := svc.CreateEncounter(ctx)
	if err != nil {
		log.Fatalf("Failed to create encounter: %v", err)
	}
	fmt.Printf("Encounter %s ready. Type 'help' for commands.\n", enc.ID)

	repl(ctx, scanner, svc, store, queue, enc.ID)
}

func repl(ctx context.Context, scanner *bufio.Scanner, svc encounter.Service, store templatestore.Store, queue *notify.Queue, encID string) {
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if err := runCommand(ctx, scanner, svc, store, encID, fields); err != nil {
			fmt.Printf("error: %v\n", err)
		}
		drain(queue)

		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}
	}
}

func runCommand(ctx context.Context, scanner *bufio.Scanner, svc encounter.Service, store templatestore.Store, encID string, fields []string) error {
	switch fields[0] {
	case "help":
		printHelp()
	case "templates":
		all, err := store.List(ctx)
		if err != nil {
			return err
		}
		for _, t := range all {
			fmt.Printf("  %-22s %s (AC %d)\n", t.ID, t.Name, t.AC)
		}
	case "add":
		if len(fields) < 2 {
			return fmt.Errorf("usage: add <template-id>")
		}
		p, err := svc.AddFromTemplate(ctx, encID, fields[1])
		if err != nil {
			return err
		}
		fmt.Printf("added %s (%s)\n", p.Name, p.UID)
	case "roll":
		return svc.RollInitiative(ctx, encID)
	case "dice":
		if len(fields) != 2 {
			return fmt.Errorf("usage: dice <expression>")
		}
		result, err := dice.RollExpression(dice.NewRandomRoller(), fields[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s = %d %v", fields[1], result.Total, result.Rolls)
		if result.Flat != 0 {
			fmt.Printf(" %+d", result.Flat)
		}
		fmt.Println()
		return nil
	case "next":
		actor, err := svc.NextTurn(ctx, encID)
		if err != nil {
			return err
		}
		if actor != nil {
			fmt.Printf("%s's turn\n", actor.Name)
		}
	case "prev":
		_, err := svc.PrevTurn(ctx, encID)
		return err
	case "remove":
		if len(fields) != 2 {
			return fmt.Errorf("usage: remove <uid>")
		}
		return svc.RemoveParticipant(ctx, encID, fields[1])
	case "focus":
		if len(fields) != 2 {
			return fmt.Errorf("usage: focus <uid>")
		}
		return svc.SetCurrentActor(ctx, encID, fields[1])
	case "move":
		if len(fields) != 3 {
			return fmt.Errorf("usage: move <from-index> <to-index>")
		}
		from, err1 := strconv.Atoi(fields[1])
		to, err2 := strconv.Atoi(fields[2])
		if err1 != nil || err2 != nil {
			return fmt.Errorf("indexes must be numbers")
		}
		return svc.Reorder(ctx, encID, from, to)
	case "attack":
		if len(fields) < 4 {
			return fmt.Errorf("usage: attack <actor-uid> <action> <target-uid...>")
		}
		outcomes, err := svc.ExecuteAttack(ctx, encID, &encounter.AttackInput{
			ActorUID:   fields[1],
			ActionName: fields[2],
			TargetUIDs: fields[3:],
			RollMode:   encounter.RollModeAuto,
		})
		if err != nil {
			return err
		}
		for _, o := range outcomes {
			fmt.Printf("  %s: %s\n", o.TargetName, describeOutcome(o))
		}
	case "save":
		if len(fields) < 4 {
			return fmt.Errorf("usage: save <actor-uid> <action> <target-uid...>")
		}
		return runSave(ctx, scanner, svc, encID, fields[1], fields[2], fields[3:])
	case "hp":
		if len(fields) != 3 {
			return fmt.Errorf("usage: hp <uid> <delta>")
		}
		delta, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("bad delta: %s", fields[2])
		}
		if delta < 0 {
			return svc.ApplyDamage(ctx, encID, fields[1], -delta)
		}
		return svc.Heal(ctx, encID, fields[1], delta)
	case "temp":
		if len(fields) != 3 {
			return fmt.Errorf("usage: temp <uid> <amount>")
		}
		amount, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("bad amount: %s", fields[2])
		}
		return svc.SetTempHP(ctx, encID, fields[1], amount)
	case "status":
		if len(fields) < 3 {
			return fmt.Errorf("usage: status <uid> <condition-key> [rounds]")
		}
		rounds := 1
		if len(fields) > 3 {
			if n, err := strconv.Atoi(fields[3]); err == nil {
				rounds = n
			}
		}
		return svc.ApplyStatus(ctx, encID, fields[1], &conditions.Instance{
			Key:    conditions.Key(fields[2]),
			Rounds: rounds,
		}, "")
	case "conditions":
		for _, entry := range conditions.Catalog() {
			fmt.Printf("  %s %s\n", entry.Icon, entry.Name)
		}
		fmt.Println("exhaustion levels:")
		for _, row := range conditions.ExhaustionTable {
			fmt.Printf("  %d: %s\n", row.Level, row.Effect)
		}
	case "show":
		enc, err := svc.GetEncounter(ctx, encID)
		if err != nil {
			return err
		}
		fmt.Printf("Round %d\n", enc.Round)
		for i, p := range enc.Participants {
			marker := "  "
			if i == enc.CurrentIndex {
				marker = "> "
			}
			init := "-"
			if p.Initiative != nil {
				init = strconv.Itoa(*p.Initiative)
			}
			fmt.Printf("%s%s %s  HP %d/%d  AC %d  init %s", marker, p.Avatar, p.Name, p.HPCurrent, p.HPMax, p.AC, init)
			for _, st := range p.Statuses {
				fmt.Printf("  %s%s(%d)", st.Icon, conditions.DisplayName(st), st.Rounds)
			}
			fmt.Printf("  [%s]\n", p.UID)
		}
	case "log":
		enc, err := svc.GetEncounter(ctx, encID)
		if err != nil {
			return err
		}
		for _, line := range enc.Log {
			fmt.Println(line)
		}
	case "quit", "exit":
	default:
		return fmt.Errorf("unknown command %q, try 'help'", fields[0])
	}
	return nil
}

func runSave(ctx context.Context, scanner *bufio.Scanner, svc encounter.Service, encID, actorUID, actionName string, targetUIDs []string) error {
	plan, err := svc.PrepareSave(ctx, encID, &encounter.SaveInput{
		ActorUID:   actorUID,
		ActionName: actionName,
		TargetUIDs: targetUIDs,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s: DC %d %s save\n", plan.ActionName, plan.SaveDC, strings.ToUpper(plan.SaveAbility))
	for _, damageType := range plan.DamageTypes() {
		fmt.Printf("  rolled %d %s\n", plan.DamageByType[damageType], damageType)
	}

	for _, target := range plan.Targets {
		if !target.Editable {
			fmt.Printf("%s: save auto-fails\n", target.Name)
			continue
		}
		hint := ""
		if target.Disadvantage {
			hint = " (saves at disadvantage)"
		}
		fmt.Printf("%s%s outcome [fail/half/none] (default %s): ", target.Name, hint, target.Outcome)
		if !scanner.Scan() {
			break
		}
		switch strings.TrimSpace(scanner.Text()) {
		case "fail":
			target.Outcome = encounter.SaveOutcomeFail
		case "half":
			target.Outcome = encounter.SaveOutcomeHalf
		case "none":
			target.Outcome = encounter.SaveOutcomeNone
		}
	}

	return svc.ApplySaveOutcomes(ctx, encID, plan)
}

func describeOutcome(o *encounter.AttackOutcome) string {
	switch {
	case o.Skipped:
		return "skipped: " + o.SkipReason
	case o.Fumble:
		return "fumble"
	case o.Crit:
		return fmt.Sprintf("critical hit for %d", o.TotalFinalDamage)
	case o.Hit:
		return fmt.Sprintf("hit for %d", o.TotalFinalDamage)
	default:
		return fmt.Sprintf("miss (%d vs AC)", o.ToHit)
	}
}

func drain(queue *notify.Queue) {
	for _, n := range queue.Drain() {
		switch n.Type {
		case notify.TypeCrit:
			if n.Variant == notify.VariantFailure {
				fmt.Printf("!! %s fumbles against %s (%s)\n", n.Attacker, n.Target, n.ToHitRoll)
				continue
			}
			fmt.Printf("!! CRITICAL: %s hits %s for %d (%s = %d vs AC %d)\n",
				n.Attacker, n.Target, n.TotalFinalDamage, n.ToHitRoll, n.ToHitResult, n.TargetAC)
		case notify.TypeHit:
			fmt.Printf("-- %s hits %s for %d (%s = %d vs AC %d)\n",
				n.Attacker, n.Target, n.TotalFinalDamage, n.ToHitRoll, n.ToHitResult, n.TargetAC)
		case notify.TypeMiss:
			fmt.Printf("-- %s misses %s (%s = %d vs AC %d)\n",
				n.Attacker, n.Target, n.ToHitRoll, n.ToHitResult, n.TargetAC)
		}
		for _, d := range n.Damages {
			note := ""
			if d.Modifier != notify.ModifierNone {
				note = fmt.Sprintf(" (%s)", d.Modifier)
			}
			fmt.Printf("     %d %s -> %d%s\n", d.RawAmount, d.Type, d.FinalAmount, note)
		}
	}
}

func printHelp() {
	fmt.Print(`commands:
  templates                           list the template library
  add <template-id>                   add a combatant from a template
  roll                                roll initiative for everyone
  dice <expr>                         quick roll, e.g. dice 2d6+3
  next / prev                         move the turn cursor
  focus <uid>                         point the cursor at a combatant
  move <from> <to>                    reorder the initiative list
  remove <uid>                        remove a combatant
  attack <actor> <action> <target...> resolve an attack action
  save <actor> <action> <target...>   resolve a save-based action
  hp <uid> <delta>                    damage (negative) or heal (positive)
  temp <uid> <amount>                 set temporary HP
  status <uid> <key> [rounds]         apply a condition
  conditions                          list conditions and exhaustion levels
  show                                print the initiative order
  log                                 print the combat log
  quit
`)
}
