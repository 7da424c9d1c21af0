package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/floorwarden/warden/internal/client"
	"github.com/floorwarden/warden/internal/models"
	"github.com/floorwarden/warden/internal/services"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	api *client.Client
	out io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -username USERNAME      - sign in (password is prompted)")
	fmt.Fprintln(cli.out, "  logout                        - forget the saved session")
	fmt.Fprintln(cli.out, "  students [-q TEXT] [-all]     - list the roster")
	fmt.Fprintln(cli.out, "  add-student -name N -room R [-phone P]")
	fmt.Fprintln(cli.out, "  dues                          - collections (leader) or own dues (student)")
	fmt.Fprintln(cli.out, "  collect -title T -amount N [-deadline YYYY-MM-DD]")
	fmt.Fprintln(cli.out, "  pay -collection ID -student ID[,ID...] [-unpaid]")
	fmt.Fprintln(cli.out, "  rollcall [-date YYYY-MM-DD]   - open the attendance session")
	fmt.Fprintln(cli.out, "  mark -session ID -student ID[,ID...] -status in|out|late")
	fmt.Fprintln(cli.out, "  stats                         - dashboard numbers")
	fmt.Fprintln(cli.out, "  announce -title T [-content C] [-important]")
	fmt.Fprintln(cli.out, "  linkcode                      - Telegram link code (student)")
	fmt.Fprintln(cli.out, "  local [-dir DIR] COMMAND      - offline floor book, no server needed")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	ctx := context.Background()

	loginCmd := flag.NewFlagSet("login", flag.ContinueOnError)
	loginUname := loginCmd.String("username", "", "Your username. The password will be prompted next.")

	studentsCmd := flag.NewFlagSet("students", flag.ContinueOnError)
	studentsQ := studentsCmd.String("q", "", "Search by name, room or phone.")
	studentsAll := studentsCmd.Bool("all", false, "Include removed students.")

	addCmd := flag.NewFlagSet("add-student", flag.ContinueOnError)
	addName := addCmd.String("name", "", "First name.")
	addRoom := addCmd.String("room", "", "Room number.")
	addPhone := addCmd.String("phone", "", "Phone number.")

	collectCmd := flag.NewFlagSet("collect", flag.ContinueOnError)
	collectTitle := collectCmd.String("title", "", "What the money is for.")
	collectAmount := collectCmd.Int64("amount", 0, "Amount per student, so'm.")
	collectDeadline := collectCmd.String("deadline", "", "Due date.")

	payCmd := flag.NewFlagSet("pay", flag.ContinueOnError)
	payCollection := payCmd.Uint("collection", 0, "Collection id.")
	payStudents := payCmd.String("student", "", "Comma separated student ids.")
	payUnpaid := payCmd.Bool("unpaid", false, "Mark as unpaid instead.")

	rollCmd := flag.NewFlagSet("rollcall", flag.ContinueOnError)
	rollDate := rollCmd.String("date", "", "Session date, today when empty.")

	markCmd := flag.NewFlagSet("mark", flag.ContinueOnError)
	markSession := markCmd.Uint("session", 0, "Attendance session id.")
	markStudents := markCmd.String("student", "", "Comma separated student ids.")
	markStatus := markCmd.String("status", "in", "in, out or late.")

	announceCmd := flag.NewFlagSet("announce", flag.ContinueOnError)
	announceTitle := announceCmd.String("title", "", "Headline.")
	announceContent := announceCmd.String("content", "", "Body text.")
	announceImportant := announceCmd.Bool("important", false, "Also push to Telegram.")

	for _, fs := range []*flag.FlagSet{loginCmd, studentsCmd, addCmd, collectCmd, payCmd, rollCmd, markCmd, announceCmd} {
		fs.SetOutput(cli.out)
	}

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginUname == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		s, err := cli.api.Login(ctx, *loginUname, string(pwd))
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Signed in as %s (%s)\n", s.Username, s.Role)
		return nil

	case "logout":
		cli.api.Logout()
		fmt.Fprintln(cli.out, "Signed out")
		return nil

	case "students":
		if err := studentsCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.students(ctx, *studentsQ, *studentsAll)

	case "add-student":
		if err := addCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addName == "" || *addRoom == "" {
			addCmd.Usage()
			return errHelp
		}
		st, err := cli.api.CreateStudent(ctx, services.StudentInput{Name: *addName, Room: *addRoom, Phone: *addPhone})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Added #%d %s (room %s)\n", st.ID, st.Name, st.Room)
		return nil

	case "dues":
		return cli.dues(ctx)

	case "collect":
		if err := collectCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *collectTitle == "" || *collectAmount <= 0 {
			collectCmd.Usage()
			return errHelp
		}
		res, err := cli.api.CreateCollection(ctx, services.CollectionInput{
			Title: *collectTitle, Amount: *collectAmount, Deadline: *collectDeadline,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Collection #%d created, %d payments\n", res.Collection.ID, res.PaymentsCreated)
		return nil

	case "pay":
		if err := payCmd.Parse(args[2:]); err != nil {
			return err
		}
		ids, err := parseIDs(*payStudents)
		if err != nil || *payCollection == 0 || len(ids) == 0 {
			payCmd.Usage()
			return errHelp
		}
		marks := make([]client.PaymentMark, 0, len(ids))
		for _, id := range ids {
			marks = append(marks, client.PaymentMark{StudentID: id, Paid: !*payUnpaid})
		}
		n, err := cli.api.SyncPayments(ctx, *payCollection, marks)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "%d payments updated\n", n)
		return nil

	case "rollcall":
		if err := rollCmd.Parse(args[2:]); err != nil {
			return err
		}
		s, err := cli.api.CreateSession(ctx, *rollDate)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Session #%d for %s\n", s.ID, s.Date)
		return nil

	case "mark":
		if err := markCmd.Parse(args[2:]); err != nil {
			return err
		}
		ids, err := parseIDs(*markStudents)
		if err != nil || *markSession == 0 || len(ids) == 0 {
			markCmd.Usage()
			return errHelp
		}
		st, err := models.ParseAttendanceStatus(*markStatus)
		if err != nil {
			return err
		}
		marks := make([]client.AttendanceMark, 0, len(ids))
		for _, id := range ids {
			marks = append(marks, client.AttendanceMark{StudentID: id, Status: st})
		}
		n, err := cli.api.SyncAttendance(ctx, *markSession, marks)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "%d records updated\n", n)
		return nil

	case "stats":
		return cli.stats(ctx)

	case "announce":
		if err := announceCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *announceTitle == "" {
			announceCmd.Usage()
			return errHelp
		}
		a, err := cli.api.CreateAnnouncement(ctx, services.AnnouncementInput{
			Title: *announceTitle, Content: *announceContent, IsImportant: *announceImportant,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Announcement #%d posted\n", a.ID)
		return nil

	case "local":
		return cli.runLocal(args[2:])

	case "linkcode":
		lc, err := cli.api.TelegramLinkCode(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Send %s to the bot before %s\n", lc.Code, lc.ExpiresAt.Local().Format("15:04"))
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) students(ctx context.Context, q string, all bool) error {
	list, err := cli.api.Students(ctx, q, all)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tROOM\tNAME\tPHONE\t")
	for _, s := range list {
		name := strings.TrimSpace(s.Name + " " + s.LastName)
		if s.IsDeleted {
			name += " (removed)"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", s.ID, s.Room, name, s.Phone)
	}
	return tw.Flush()
}

func (cli *commandLine) dues(ctx context.Context) error {
	tw := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	if cli.api.Session().Role == services.RoleStudent {
		list, err := cli.api.MyDues(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "TITLE\tAMOUNT\tPAID\t")
		for _, d := range list {
			fmt.Fprintf(tw, "%s\t%d\t%t\t\n", d.Title, d.Amount, d.IsPaid)
		}
		return tw.Flush()
	}
	list, err := cli.api.Collections(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "ID\tTITLE\tAMOUNT\tPAID\tCOLLECTED\t")
	for _, c := range list {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d/%d\t%d/%d\t\n", c.ID, c.Title, c.Amount, c.PaidCount, c.Total, c.Collected, c.Expected)
	}
	return tw.Flush()
}

func (cli *commandLine) stats(ctx context.Context) error {
	if cli.api.Session().Role == services.RoleStudent {
		s, err := cli.api.StudentStats(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Attendance: %d%% of %d\n", s.AttendanceRate, s.AttendanceCount)
		fmt.Fprintf(cli.out, "Paid: %d / %d\n", s.PaidAmount, s.TotalAmount)
		fmt.Fprintf(cli.out, "Open requests: %d\n", s.OpenRequests)
		return nil
	}
	s, err := cli.api.LeaderStats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Active students: %d\n", s.ActiveStudents)
	fmt.Fprintf(cli.out, "Today present: %d%% (late %d, absent %d)\n", s.TodayAttendance, s.Late, s.Absent)
	fmt.Fprintf(cli.out, "Collected: %d%% (%d / %d)\n", s.CollectionDegree, s.Collected, s.Expected)
	fmt.Fprintf(cli.out, "Open requests: %d\n", s.OpenRequests)
	return nil
}

func parseIDs(s string) ([]uint, error) {
	var ids []uint
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseUint(part, 10, 64)
		if err != nil || id == 0 {
			return nil, fmt.Errorf("bad id %q", part)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
